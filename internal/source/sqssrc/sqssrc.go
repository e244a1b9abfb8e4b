// Package sqssrc consumes the evaluation event stream from an SQS queue.
package sqssrc

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/programme-lv/aggregator/api"
)

type Source struct {
	client   *sqs.Client
	queueUrl string
	backlog  []api.Event
}

func New(client *sqs.Client, queueUrl string) *Source {
	return &Source{client: client, queueUrl: queueUrl}
}

// NewFromEnv builds a source with the default AWS config chain.
func NewFromEnv(ctx context.Context, region string, queueUrl string) (*Source, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return New(sqs.NewFromConfig(cfg), queueUrl), nil
}

// Next long-polls the queue until an event arrives or ctx ends. SQS has no
// end-of-stream marker; the caller bounds the drain with the context.
func (s *Source) Next(ctx context.Context) (api.Event, error) {
	for len(s.backlog) == 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		output, err := s.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(s.queueUrl),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     5,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to receive messages: %w", err)
		}
		for _, message := range output.Messages {
			ev, err := api.Decode([]byte(*message.Body))
			if err != nil {
				return nil, err
			}
			s.backlog = append(s.backlog, ev)
			_, err = s.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
				QueueUrl:      aws.String(s.queueUrl),
				ReceiptHandle: message.ReceiptHandle,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to delete message: %w", err)
			}
		}
	}
	ev := s.backlog[0]
	s.backlog = s.backlog[1:]
	return ev, nil
}
