package notify

import (
	"context"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/yurykabanov/s3duplicity-backup/pkg/appcontext"
)

const (
	// SNS subjects are limited to 100 characters.
	maxSubjectLength = 100

	// SNS rejects messages over 256 KB.
	maxMessageBytes = 256 * 1024

	truncatedMarker = "\n\n[output truncated]"
)

type publisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SnsNotifier struct {
	logger logrus.FieldLogger

	client   publisher
	topicArn string
}

func NewSnsNotifier(logger logrus.FieldLogger, client publisher, topicArn string) *SnsNotifier {
	return &SnsNotifier{
		logger:   logger,
		client:   client,
		topicArn: topicArn,
	}
}

func (n *SnsNotifier) Notify(ctx context.Context, subject, message string) error {
	logger := appcontext.LoggerFromContext(n.logger, ctx)

	if len(subject) > maxSubjectLength {
		subject = subject[:maxSubjectLength]
	}

	out, err := n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicArn),
		Subject:  aws.String(subject),
		Message:  aws.String(truncateMessage(message)),
	})
	if err != nil {
		return errors.Wrapf(err, "unable to publish to %s", n.topicArn)
	}

	logger.WithField("message_id", aws.ToString(out.MessageId)).Debug("Notification published")

	return nil
}

// truncateMessage cuts message to the SNS size limit on a UTF-8 boundary.
func truncateMessage(message string) string {
	if len(message) <= maxMessageBytes {
		return message
	}

	cut := maxMessageBytes - len(truncatedMarker)
	for cut > 0 && !utf8.RuneStart(message[cut]) {
		cut--
	}

	return message[:cut] + truncatedMarker
}

type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, string, string) error {
	return nil
}
