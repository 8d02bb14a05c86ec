package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetters(t *testing.T) {
	c := map[string]string{
		"PORT":        "9090",
		"BAD_INT":     "nine",
		"SEED":        "true",
		"BAD_BOOL":    "maybe",
		"TIMEOUT":     "30",
		"ORIGINS":     "https://a.example, ,https://b.example",
		"EMPTY_VALUE": "",
	}

	assert.Equal(t, "9090", GetString(c, "PORT", "8080"))
	assert.Equal(t, "", GetString(c, "EMPTY_VALUE", "fallback"))
	assert.Equal(t, "fallback", GetString(nil, "PORT", "fallback"))

	assert.Equal(t, 9090, GetInt(c, "PORT", 8080))
	assert.Equal(t, 8080, GetInt(c, "BAD_INT", 8080))

	assert.True(t, GetBool(c, "SEED", false))
	assert.False(t, GetBool(c, "BAD_BOOL", false))
	assert.True(t, GetBool(c, "MISSING", true))

	assert.Equal(t, 30*time.Second, GetDuration(c, "TIMEOUT", time.Second, time.Minute))
	assert.Equal(t, time.Minute, GetDuration(c, "BAD_INT", time.Second, time.Minute))

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, GetList(c, "ORIGINS"))
	assert.Empty(t, GetList(c, "MISSING"))
}

func TestNewReadsEnvironment(t *testing.T) {
	t.Setenv("MINDMESH_TEST_KEY", "a=b")
	c := New()
	assert.Equal(t, "a=b", c["MINDMESH_TEST_KEY"])
}

type fakeSSM struct {
	pages [][]types.Parameter
	calls int
	err   error
}

func (f *fakeSSM) GetParametersByPath(_ context.Context, in *ssm.GetParametersByPathInput, _ ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	page := f.pages[f.calls]
	f.calls++
	out := &ssm.GetParametersByPathOutput{Parameters: page}
	if f.calls < len(f.pages) {
		out.NextToken = aws.String("next")
	}
	return out, nil
}

func TestOverlaySSM(t *testing.T) {
	client := &fakeSSM{pages: [][]types.Parameter{
		{
			{Name: aws.String("/mindmesh/prod/GEMINI_API_KEY"), Value: aws.String("from-ssm")},
			{Name: aws.String("/mindmesh/prod/PORT"), Value: aws.String("1111")},
		},
		{
			{Name: aws.String("/mindmesh/prod/db/SUPABASE_DB_PASSWORD"), Value: aws.String("secret")},
		},
	}}
	c := map[string]string{"PORT": "8080"}

	require.NoError(t, overlaySSM(context.Background(), client, c, "mindmesh/prod"))
	assert.Equal(t, 2, client.calls)
	assert.Equal(t, "from-ssm", c["GEMINI_API_KEY"])
	assert.Equal(t, "secret", c["SUPABASE_DB_PASSWORD"])
	assert.Equal(t, "8080", c["PORT"])
}

func TestOverlaySSMError(t *testing.T) {
	err := overlaySSM(context.Background(), &fakeSSM{err: errors.New("denied")}, map[string]string{}, "/x")
	assert.Error(t, err)
}

func TestLoadSSMWithoutPrefix(t *testing.T) {
	assert.NoError(t, LoadSSM(context.Background(), map[string]string{}, ""))
}
