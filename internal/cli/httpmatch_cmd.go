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

	"github.com/sabouaram/ringscan/internal/scan/httpmatch"
)

func newHTTPHeaderMatchCommand() *cobra.Command {
	f := &scanFlags{}

	var (
		path        string
		headerRegex string
	)

	cmd := &cobra.Command{
		Use:   "http-header-match",
		Short: "Report every host whose HTTP response headers match a regular expression",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()

			cap, err := httpmatch.New(f.port, path, headerRegex, f.maxReadSize, log)
			if err != nil {
				return err
			}

			return runScan(cmd.Context(), f, log, cap)
		},
	}

	addCommonFlags(cmd, f)
	cmd.Flags().StringVar(&path, "path", "/", "request path")
	cmd.Flags().StringVar(&headerRegex, "header-regex", "", "regular expression matched against the response")
	_ = cmd.MarkFlagRequired("header-regex")

	return cmd
}
