package cli

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/sqdshguy/wirebridge/pkg/bridge"
	"github.com/sqdshguy/wirebridge/pkg/cli/internal/output"
	"github.com/sqdshguy/wirebridge/pkg/emulation"
)

var (
	requestMethod  string
	requestHeaders []string
	requestData    string
	requestSession string
	requestTimeout time.Duration
)

var requestCmd = &cobra.Command{
	Use:   "request [url]",
	Short: "Perform an HTTP request with browser-shaped headers",
	Long: `Perform an HTTP request presenting the identity of the selected emulation
profile: its User-Agent, client hints and header order.

With --session, cookies persist across invocations inside one process and the
named session keeps the profile it was created with. Without a URL argument,
an interactive form collects the request details.`,
	Example: `  # Plain GET
  wirebridge request https://httpbin.org/get

  # POST with a body and custom headers
  wirebridge request -X POST -d '{"q":1}' -H "Content-Type: application/json" https://httpbin.org/post

  # Body from a file, Firefox identity
  wirebridge request -X POST -d @payload.json --profile firefox_139 https://httpbin.org/post

  # Interactive form
  wirebridge request`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRequest,
}

func runRequest(cmd *cobra.Command, args []string) error {
	url := ""
	if len(args) > 0 {
		url = args[0]
	}
	profile := cfg.Profile

	if url == "" {
		formMethod := requestMethod
		formProfile := string(emulation.Resolve(profile))
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("What URL should be requested?").
					Placeholder("https://example.com").
					Value(&url).
					Validate(func(s string) error {
						if s == "" {
							return errors.New("url is required")
						}
						return nil
					}),
				huh.NewSelect[string]().
					Title("Which HTTP method?").
					Options(
						huh.NewOption("GET", "GET"),
						huh.NewOption("POST", "POST"),
						huh.NewOption("PUT", "PUT"),
						huh.NewOption("DELETE", "DELETE"),
						huh.NewOption("PATCH", "PATCH"),
						huh.NewOption("HEAD", "HEAD"),
					).
					Value(&formMethod),
				huh.NewSelect[string]().
					Title("Which emulation profile?").
					Options(profileOptions()...).
					Value(&formProfile),
				huh.NewText().
					Title("Request body (empty for none)").
					Placeholder(`{"status": "ok"}`).
					Value(&requestData),
			),
		)
		if err := form.Run(); err != nil {
			return err
		}
		requestMethod = formMethod
		profile = formProfile
	}

	headers, err := parseHeaders(requestHeaders)
	if err != nil {
		return err
	}
	body, err := readPayload(requestData)
	if err != nil {
		return err
	}

	timeout := requestTimeout
	if !cmd.Flags().Changed("timeout") {
		timeout = cfg.TimeoutDuration()
	}

	b := newBridge()
	defer b.Shutdown()

	resp, err := b.Request(cmd.Context(), bridge.RequestOptions{
		URL:       url,
		Method:    requestMethod,
		Headers:   headers,
		Body:      body,
		SessionID: requestSession,
		Profile:   profile,
		Proxy:     cfg.Proxy,
		Timeout:   timeout,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		return output.JSON(resp)
	}
	printResponse(resp)
	return nil
}

func printResponse(resp *emulation.Response) {
	fmt.Printf("HTTP %d  %s\n", resp.Status, resp.URL)

	names := make([]string, 0, len(resp.Headers))
	for name := range resp.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, value := range resp.Headers[name] {
			fmt.Printf("%s: %s\n", name, value)
		}
	}

	if resp.Body != "" {
		fmt.Printf("\n%s\n", resp.Body)
	}
}

func profileOptions() []huh.Option[string] {
	profiles := emulation.Profiles()
	opts := make([]huh.Option[string], 0, len(profiles))
	for _, p := range profiles {
		opts = append(opts, huh.NewOption(string(p), string(p)))
	}
	return opts
}

func init() {
	rootCmd.AddCommand(requestCmd)

	requestCmd.Flags().StringVarP(&requestMethod, "method", "X", "GET", "HTTP method")
	requestCmd.Flags().StringArrayVarP(&requestHeaders, "header", "H", nil, "Request header (\"Name: value\"), repeatable")
	requestCmd.Flags().StringVarP(&requestData, "data", "d", "", "Request body (or @filename)")
	requestCmd.Flags().StringVar(&requestSession, "session", "", "Session ID for cookie persistence")
	requestCmd.Flags().DurationVarP(&requestTimeout, "timeout", "t", 30*time.Second, "Request timeout")
}
