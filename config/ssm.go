package config

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"
)

type parametersByPathGetter interface {
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

// LoadSSM overlays every parameter under prefix onto config, keyed by the last path
// segment ("/mindmesh/prod/GEMINI_API_KEY" sets GEMINI_API_KEY). Values already in config
// are kept. An empty prefix is a no-op.
func LoadSSM(ctx context.Context, config map[string]string, prefix string) error {
	if prefix == "" {
		return nil
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("loading aws config: %w", err)
	}
	return overlaySSM(ctx, ssm.NewFromConfig(cfg), config, prefix)
}

func overlaySSM(ctx context.Context, client parametersByPathGetter, config map[string]string, prefix string) error {
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}

	loaded := 0
	var nextToken *string
	for {
		out, err := client.GetParametersByPath(ctx, &ssm.GetParametersByPathInput{
			Path:           aws.String(prefix),
			Recursive:      aws.Bool(true),
			WithDecryption: aws.Bool(true),
			NextToken:      nextToken,
		})
		if err != nil {
			return fmt.Errorf("reading ssm parameters under %s: %w", prefix, err)
		}

		for _, p := range out.Parameters {
			if p.Name == nil || p.Value == nil {
				continue
			}
			key := path.Base(*p.Name)
			if _, exists := config[key]; exists {
				continue
			}
			config[key] = *p.Value
			loaded++
		}

		if out.NextToken == nil || *out.NextToken == "" {
			break
		}
		nextToken = out.NextToken
	}

	log.Info().Str("prefix", prefix).Int("parameters", loaded).Msg("loaded configuration from SSM")
	return nil
}
