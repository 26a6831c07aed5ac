package cmd

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// envPrefix namespaces the dotenv keys: --num-samples reads PISIM_NUM_SAMPLES.
const envPrefix = "PISIM_"

// envKey returns the dotenv key for a flag name.
func envKey(flag string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

// algorithmKey is the dotenv key for the run algorithm, which is a
// positional argument rather than a flag.
var algorithmKey = envKey("algorithm")

// applyEnvFile reads a dotenv file and uses its PISIM_* entries as defaults
// for flags that are still unset. It returns the PISIM_ALGORITHM entry, or ""
// when the file has none. The process environment is not modified.
func applyEnvFile(cmd *cobra.Command, path string) (string, error) {
	env, err := godotenv.Read(path)
	if err != nil {
		return "", fmt.Errorf("reading env file %s: %w", path, err)
	}
	values := make(map[string]string)
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if v, ok := env[envKey(f.Name)]; ok {
			values[f.Name] = v
		}
	})
	if err := applyFlagDefaults(cmd, values); err != nil {
		return "", err
	}
	return env[algorithmKey], nil
}
