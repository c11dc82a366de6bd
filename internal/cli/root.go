/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2024 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sabouaram/ringscan/internal/logger"
)

var verboseFlag string

// NewRootCommand builds the root command and attaches the three scan-type
// subcommands. SCANNER_LOG_LEVEL is bound through viper the way the
// teacher's viper package binds environment lookups for cobra, and takes
// precedence only when --verbose was left at its default.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "ringscan",
		Short: "io_uring-driven IPv4 TCP port scanner",
	}

	root.PersistentFlags().StringVar(&verboseFlag, "verbose", "info", "log level: trace, debug, info, warning, error")

	v := viper.New()
	v.SetEnvPrefix("SCANNER")
	_ = v.BindEnv("log_level")

	cobra.OnInitialize(func() {
		if env := v.GetString("log_level"); env != "" && !root.PersistentFlags().Changed("verbose") {
			verboseFlag = env
		}
	})

	root.AddCommand(newTCPConnectCommand())
	root.AddCommand(newSSHVersionCommand())
	root.AddCommand(newHTTPHeaderMatchCommand())

	return root
}

func newLogger() logger.Logger {
	return logger.New(logger.ParseLevel(verboseFlag))
}
