package responder

import (
	"context"
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

type bedrockConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// Bedrock generates replies through the AWS Bedrock Converse API.
type Bedrock struct {
	api     bedrockConverseAPI
	modelID string
}

// NewBedrock wraps a Bedrock runtime client.
func NewBedrock(api bedrockConverseAPI, modelID string) *Bedrock {
	if api == nil {
		panic("responder: bedrock converse client cannot be nil")
	}
	if strings.TrimSpace(modelID) == "" {
		panic("responder: bedrock model id cannot be empty")
	}
	return &Bedrock{api: api, modelID: modelID}
}

// Generate asks the model for one empathetic reply.
func (b *Bedrock) Generate(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("responder: empty input")
	}

	out, err := b.api.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId: aws.String(b.modelID),
		System: []brtypes.SystemContentBlock{
			&brtypes.SystemContentBlockMemberText{Value: systemPrompt},
		},
		Messages: []brtypes.Message{
			{
				Role: brtypes.ConversationRoleUser,
				Content: []brtypes.ContentBlock{
					&brtypes.ContentBlockMemberText{Value: text},
				},
			},
		},
		InferenceConfig: &brtypes.InferenceConfiguration{
			MaxTokens:   aws.Int32(300),
			Temperature: aws.Float32(0.4),
		},
	})
	if err != nil {
		return "", err
	}

	message, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return "", errors.New("responder: unexpected bedrock output type")
	}
	for _, block := range message.Value.Content {
		if textBlock, ok := block.(*brtypes.ContentBlockMemberText); ok {
			return textBlock.Value, nil
		}
	}
	return "", errors.New("responder: bedrock response had no text content")
}
