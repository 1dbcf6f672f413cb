package notifyfx

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/yurykabanov/s3duplicity-backup/pkg/domain"
	"github.com/yurykabanov/s3duplicity-backup/pkg/notify"
	"github.com/yurykabanov/s3duplicity-backup/pkg/settings"
)

type SnsConfig struct {
	Region   string
	TopicArn string
}

func SnsConfigProvider(s *settings.Settings) *SnsConfig {
	return &SnsConfig{
		Region:   s.Region,
		TopicArn: s.ArnSns,
	}
}

type awsConfigLoader func(ctx context.Context, region string) (aws.Config, error)

func loadAwsConfig(ctx context.Context, region string) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
}

func Notifier(config *SnsConfig, logger *logrus.Logger) (domain.Notifier, error) {
	return newNotifier(config, logger, loadAwsConfig)
}

func newNotifier(config *SnsConfig, logger *logrus.Logger, load awsConfigLoader) (domain.Notifier, error) {
	if config.TopicArn == "" {
		logger.Debug("No SNS topic configured, notifications are disabled")
		return notify.NoopNotifier{}, nil
	}

	logger.WithFields(logrus.Fields{
		"region": config.Region,
		"topic":  config.TopicArn,
	}).Debug("Creating SNS client")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	awsConfig, err := load(ctx, config.Region)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to load AWS configuration")
	}

	client := sns.NewFromConfig(awsConfig)

	return notify.NewSnsNotifier(logger, client, config.TopicArn), nil
}
