package commands

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	vaila "github.com/vaila-multimodaltoolbox/vaila"
	"github.com/vaila-multimodaltoolbox/vaila/docs"
)

var markdownFiles = regexp.MustCompile(`\.md$`)

func (c *CLI) newDocsCmd() *cobra.Command {
	var port int
	var noBrowser bool
	var exportDir string

	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Serve the bundled documentation in a browser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if exportDir != "" {
				if err := vaila.UnpackResourceDir("docs", exportDir); err != nil {
					return err
				}
				cmd.Println("Exported documentation to " + exportDir)
				return nil
			}
			lang := c.settings.Load().Language
			if lang == "" {
				lang = "en"
			}
			pages := make(map[string]string)
			for name, content := range vaila.MustGetResourceFiltered("docs", markdownFiles) {
				pages[strings.TrimPrefix(name, "docs/")] = content
			}
			server := docs.New(pages, lang, "vailá")

			bound := server.ListenAndServe(port)
			if bound == 0 {
				return fmt.Errorf("cannot listen on port %d", port)
			}
			url := fmt.Sprintf("http://localhost:%d/", bound)
			if noBrowser {
				cmd.Println("Documentation available at " + url)
			} else {
				cmd.Println("Serving documentation at " + url)
				if err := browser.OpenURL(url); err != nil {
					cmd.Println("Open " + url + " manually.")
				}
			}
			<-cmd.Context().Done()
			return nil
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "port to listen on (0 picks a free port)")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "print the URL instead of opening a browser")
	cmd.Flags().StringVar(&exportDir, "export", "", "write the markdown pages to a directory instead of serving")
	return cmd
}
