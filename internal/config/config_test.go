package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearProviderEnv blanks every variable applyEnv reads so tests are not
// affected by the surrounding environment.
func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SYMPTOMSCOPE_PROVIDER",
		"GEMINI_API_KEY", "GEMINI_MODEL",
		"OPENAI_API_KEY", "OPENAI_MODEL",
		"AZURE_OPENAI_API_KEY", "AZURE_OPENAI_ENDPOINT", "AZURE_OPENAI_DEPLOYMENT", "AZURE_OPENAI_API_VERSION",
		"ANTHROPIC_API_KEY", "ANTHROPIC_MODEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearProviderEnv(t)

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.Model)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("SYMPTOMSCOPE_PROVIDER", "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	t.Setenv("ANTHROPIC_MODEL", "claude-test")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, ProviderAnthropic, cfg.Provider)
	assert.Equal(t, "test-key", cfg.Anthropic.APIKey)
	assert.Equal(t, "claude-test", cfg.Anthropic.Model)
}

func TestLoad_YAMLFile(t *testing.T) {
	clearProviderEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `provider: openai
openai:
  api_key: file-key
  model: gpt-4o
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "file-key", cfg.OpenAI.APIKey)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearProviderEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("provider: openai\n"), 0644))
	t.Setenv("SYMPTOMSCOPE_PROVIDER", "gemini")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, ProviderGemini, cfg.Provider)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("provider: [unterminated"), 0644))

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestValidate_MissingAPIKey(t *testing.T) {
	cfg := defaults()
	cfg.Provider = ProviderOpenAI

	err := cfg.Validate()

	require.Error(t, err)
	cfgErr, ok := err.(*ConfigError)
	require.True(t, ok)
	assert.Equal(t, "OPENAI_API_KEY", cfgErr.Field)
}

func TestValidate_AzureRequiresEndpointAndDeployment(t *testing.T) {
	cfg := defaults()
	cfg.Provider = ProviderAzure
	cfg.Azure.APIKey = "key"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AZURE_OPENAI_ENDPOINT")

	cfg.Azure.Endpoint = "https://example.openai.azure.com"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AZURE_OPENAI_DEPLOYMENT")

	cfg.Azure.Deployment = "gpt-4o"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_UnknownProvider(t *testing.T) {
	cfg := defaults()
	cfg.Provider = "watson"

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider")
}

func TestStatus_Configured(t *testing.T) {
	cfg := defaults()
	cfg.Gemini.APIKey = "key"

	s := cfg.Status()

	assert.True(t, s.Configured)
	assert.Equal(t, ProviderGemini, s.Provider)
	assert.Equal(t, "gemini-2.0-flash", s.Model)
	assert.Empty(t, s.Missing)
}

func TestStatus_MissingField(t *testing.T) {
	cfg := defaults()

	s := cfg.Status()

	assert.False(t, s.Configured)
	assert.Equal(t, "GEMINI_API_KEY", s.Missing)
}

func TestModel_AzureReportsDeployment(t *testing.T) {
	cfg := defaults()
	cfg.Provider = ProviderAzure
	cfg.Azure.Deployment = "my-deployment"

	assert.Equal(t, "my-deployment", cfg.Model())
}
