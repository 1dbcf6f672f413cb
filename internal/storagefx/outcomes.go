package storagefx

import (
	"github.com/yurykabanov/s3duplicity-backup/pkg/domain"
	"github.com/yurykabanov/s3duplicity-backup/pkg/http/handler"
	"github.com/yurykabanov/s3duplicity-backup/pkg/storage"
)

func OutcomeRepository() (
	*storage.OutcomeRepository,
	domain.OutcomeRepository,
	handler.OutcomeRepository,
) {
	repo := storage.NewOutcomeRepository()

	return repo, repo, repo
}
