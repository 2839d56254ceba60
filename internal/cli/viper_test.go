package cli

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

type settings struct {
	format string
	rate   float64
	limit  int
	tree   bool
	level  zapcore.Level
}

func newTestCommand(t *testing.T, s *settings) *cobra.Command {
	t.Helper()

	cmd := &cobra.Command{Use: "xdfinfo", RunE: func(*cobra.Command, []string) error { return nil }}
	err := BindOptions(NewViper("xdfinfo"), cmd.Flags(), []Opt{
		NewOpt(&s.format, "log-format", "console", "log format"),
		NewOpt(&s.rate, "resample", 0.0, "target rate"),
		NewOpt(&s.limit, "limit", 10, "max events"),
		NewOpt(&s.tree, "tree", false, "print tree"),
		NewOpt(&s.level, "log-level", zapcore.WarnLevel, "log level"),
	})
	require.NoError(t, err)

	return cmd
}

func TestBindOptions_Defaults(t *testing.T) {
	var s settings
	cmd := newTestCommand(t, &s)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	require.Equal(t, settings{format: "console", rate: 0, limit: 10, tree: false, level: zapcore.WarnLevel}, s)
}

func TestBindOptions_Env(t *testing.T) {
	t.Setenv("XDFINFO_LOG_FORMAT", "logfmt")
	t.Setenv("XDFINFO_RESAMPLE", "256")
	t.Setenv("XDFINFO_LIMIT", "3")
	t.Setenv("XDFINFO_TREE", "true")
	t.Setenv("XDFINFO_LOG_LEVEL", "debug")

	var s settings
	cmd := newTestCommand(t, &s)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	require.Equal(t, settings{format: "logfmt", rate: 256, limit: 3, tree: true, level: zapcore.DebugLevel}, s)
}

func TestBindOptions_FlagOverridesEnv(t *testing.T) {
	t.Setenv("XDFINFO_LIMIT", "3")
	t.Setenv("XDFINFO_LOG_LEVEL", "debug")

	var s settings
	cmd := newTestCommand(t, &s)
	cmd.SetArgs([]string{"--limit", "7", "--log-level", "error"})
	require.NoError(t, cmd.Execute())

	require.Equal(t, 7, s.limit)
	require.Equal(t, zapcore.ErrorLevel, s.level)
}

func TestBindOptions_Errors(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	var unsupported []byte
	err := BindOptions(NewViper("x"), cmd.Flags(), []Opt{NewOpt(&unsupported, "bytes", nil, "")})
	require.Error(t, err)

	t.Setenv("Y_LOG_LEVEL", "loud")
	var level zapcore.Level
	err = BindOptions(NewViper("y"), (&cobra.Command{Use: "y"}).Flags(), []Opt{NewOpt(&level, "log-level", zapcore.InfoLevel, "")})
	require.Error(t, err)
}

func TestLevelVar(t *testing.T) {
	cmd := &cobra.Command{Use: "z"}
	var level zapcore.Level
	LevelVar(cmd.Flags(), &level, "level", zapcore.InfoLevel, "")

	require.NoError(t, cmd.Flags().Set("level", "warn"))
	require.Equal(t, zapcore.WarnLevel, level)
	require.Error(t, cmd.Flags().Set("level", "nope"))
	require.Equal(t, "Log-Level", cmd.Flags().Lookup("level").Value.Type())
}
