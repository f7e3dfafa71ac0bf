package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ConfigSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) TestContextHelpersAndKeyString() {
	ctx := context.Background()
	cfg := ConfigurationDefault{DefaultLanguage: "fr"}

	s.Equal("i18nutils/config/configurationKey", ctxKeyConfiguration.String())

	ctx = ToContext(ctx, cfg)
	fromCtx := FromContext[ConfigurationDefault](ctx)
	s.Equal("fr", fromCtx.DefaultLanguage)

	missing := FromContext[*ConfigurationDefault](context.Background())
	s.Nil(missing)
}

func (s *ConfigSuite) TestFromEnvAndFillEnv() {
	type envCfg struct {
		Value string `env:"I18N_TEST_VALUE"`
	}

	s.T().Setenv("I18N_TEST_VALUE", "abc")

	fromEnv, err := FromEnv[envCfg]()
	s.Require().NoError(err)
	s.Equal("abc", fromEnv.Value)

	var target envCfg
	s.Require().NoError(FillEnv(&target))
	s.Equal("abc", target.Value)
}

func (s *ConfigSuite) TestLocalizationDefaults() {
	cfg, err := FromEnv[ConfigurationDefault]()
	s.Require().NoError(err)

	s.Equal([]string{"en:English"}, cfg.GetLanguages())
	s.Empty(cfg.GetDefaultLanguage())
	s.Equal("localization", cfg.GetTranslationsFolder())
	s.Equal(DefaultSlowQueryThreshold, cfg.GetDatabaseSlowQueryLogThreshold())
}

func (s *ConfigSuite) TestLocalizationFromEnv() {
	s.T().Setenv("LANGUAGES", "en:English, fr:Français,,pt-BR:Português")
	s.T().Setenv("I18N_DEFAULT_LANGUAGE", " fr ")
	s.T().Setenv("TRANSLATIONS_FOLDER", "testdata")

	cfg, err := FromEnv[ConfigurationDefault]()
	s.Require().NoError(err)

	s.Equal([]string{"en:English", "fr:Français", "pt-BR:Português"}, cfg.GetLanguages())
	s.Equal("fr", cfg.GetDefaultLanguage())
	s.Equal("testdata", cfg.GetTranslationsFolder())
}

func (s *ConfigSuite) TestDatabaseGetters() {
	cfg := &ConfigurationDefault{
		DatabasePrimaryURL:                   []string{"postgres://a"},
		DatabaseReplicaURL:                   []string{"postgres://b"},
		DatabaseMigrate:                      true,
		DatabaseSkipDefaultTransaction:       true,
		DatabasePreferSimpleProtocol:         false,
		DatabaseMaxIdleConnections:           3,
		DatabaseMaxOpenConnections:           7,
		DatabaseMaxConnectionLifeTimeSeconds: 30,
		DatabaseTraceQueries:                 true,
		DatabaseSlowQueryLogThreshold:        "not-a-duration",
		LogLevel:                             "debug",
	}

	s.Equal([]string{"postgres://a"}, cfg.GetDatabasePrimaryHostURL())
	s.Equal([]string{"postgres://b"}, cfg.GetDatabaseReplicaHostURL())
	s.True(cfg.DoDatabaseMigrate())
	s.True(cfg.SkipDefaultTransaction())
	s.False(cfg.PreferSimpleProtocol())
	s.Equal(3, cfg.GetMaxIdleConnections())
	s.Equal(7, cfg.GetMaxOpenConnections())
	s.Equal(30*time.Second, cfg.GetMaxConnectionLifeTimeInSeconds())
	s.True(cfg.CanDatabaseTraceQueries())
	s.Equal(DefaultSlowQueryThreshold, cfg.GetDatabaseSlowQueryLogThreshold())
	s.True(cfg.LoggingLevelIsDebug())
}
