// Package sqs publishes attempt events to an Amazon SQS queue.
package sqs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awssqs "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"quiz-attempt-service/internal/events"
)

const clientID = "quiz_attempt_service"

// SendMessageAPI is the slice of the SQS client the publisher needs.
type SendMessageAPI interface {
	SendMessage(ctx context.Context, params *awssqs.SendMessageInput, optFns ...func(*awssqs.Options)) (*awssqs.SendMessageOutput, error)
}

// Message is the body sent for every event.
type Message struct {
	ClientID           string         `json:"clientId"`
	EntityType         string         `json:"entityType"`
	UniqueIdentifier   string         `json:"uniqueIdentifier"`
	OperationType      string         `json:"operationType"`
	OperationTimestamp int64          `json:"operationTimestamp"`
	UserID             string         `json:"userId"`
	QuizID             string         `json:"quizId"`
	Payload            map[string]any `json:"payload,omitempty"`
}

type Publisher struct {
	client   SendMessageAPI
	queueURL string
}

func NewPublisher(client SendMessageAPI, queueURL string) *Publisher {
	return &Publisher{client: client, queueURL: queueURL}
}

// NewFromRegion builds a publisher using the default AWS credential chain.
func NewFromRegion(ctx context.Context, region, queueURL string) (*Publisher, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewPublisher(awssqs.NewFromConfig(awsCfg), queueURL), nil
}

func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	body, err := json.Marshal(Message{
		ClientID:           clientID,
		EntityType:         "quiz_attempt",
		UniqueIdentifier:   event.UserID + "_" + event.QuizID,
		OperationType:      string(event.Type),
		OperationTimestamp: event.OccurredAt.Unix(),
		UserID:             event.UserID,
		QuizID:             event.QuizID,
		Payload:            event.Payload,
	})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	_, err = p.client.SendMessage(ctx, &awssqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"eventType": {DataType: aws.String("String"), StringValue: aws.String(string(event.Type))},
		},
	})
	if err != nil {
		return fmt.Errorf("send %s to sqs: %w", event.Type, err)
	}
	return nil
}
