package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sqdshguy/wirebridge/pkg/bridge"
	"github.com/sqdshguy/wirebridge/pkg/cli/internal/output"
	"github.com/sqdshguy/wirebridge/pkg/emulation"
	"github.com/sqdshguy/wirebridge/pkg/registry"
	"github.com/sqdshguy/wirebridge/pkg/stream"
)

var (
	wsHeaders []string
	wsTimeout time.Duration
	wsCount   int
)

var wsCmd = &cobra.Command{
	Use:   "ws",
	Short: "Interact with WebSocket endpoints",
	Long: `Open WebSocket connections whose upgrade request carries the selected
emulation profile's identity. Messages are delivered strictly in arrival
order.`,
}

var wsConnectCmd = &cobra.Command{
	Use:   "connect <url>",
	Short: "Interactive WebSocket client (REPL mode)",
	Long: `Connect and start an interactive session: type messages and press Enter to
send, incoming messages are printed as they arrive. Ctrl+C closes the
connection cleanly.`,
	Example: `  # Connect to an endpoint
  wirebridge ws connect wss://echo.example/ws

  # Connect with a custom header and Safari identity
  wirebridge ws connect -H "Authorization: Bearer token" --profile safari_18_5 wss://echo.example/ws`,
	Args: cobra.ExactArgs(1),
	RunE: runWSConnect,
}

var wsSendCmd = &cobra.Command{
	Use:   "send <url> <message>",
	Short: "Send a single message and exit",
	Example: `  # Send a simple message
  wirebridge ws send wss://echo.example/ws "hello"

  # Send a file's contents
  wirebridge ws send wss://echo.example/ws @message.json`,
	Args: cobra.ExactArgs(2),
	RunE: runWSSend,
}

var wsListenCmd = &cobra.Command{
	Use:   "listen <url>",
	Short: "Stream incoming messages",
	Example: `  # Print every message until the server closes
  wirebridge ws listen wss://feed.example/stream

  # Stop after ten messages
  wirebridge ws listen -n 10 wss://feed.example/stream`,
	Args: cobra.ExactArgs(1),
	RunE: runWSListen,
}

// wsEvent is one inbound event surfaced to the command loops.
type wsEvent struct {
	Kind string `json:"type"`
	Data string `json:"data,omitempty"`
	Err  error  `json:"-"`
}

// wsRecord is the JSON form of one REPL exchange.
type wsRecord struct {
	Direction string `json:"direction"`
	Type      string `json:"type"`
	Data      string `json:"data"`
	Timestamp string `json:"timestamp"`
}

// openConnection dials through the bridge, funneling events into a channel
// the command loop can select on.
func openConnection(ctx context.Context, b *bridge.Bridge, url string) (registry.Handle, <-chan wsEvent, <-chan struct{}, error) {
	events := make(chan wsEvent, 64)
	closed := make(chan struct{})

	headers, err := parseHeaders(wsHeaders)
	if err != nil {
		return 0, nil, nil, err
	}

	handle, err := b.Connect(ctx, bridge.ConnectOptions{
		URL:              url,
		Profile:          cfg.Profile,
		Headers:          headers,
		Proxy:            cfg.Proxy,
		HandshakeTimeout: wsTimeout,
		Callbacks: stream.Callbacks{
			OnMessage: func(kind stream.EventKind, data []byte) {
				events <- wsEvent{Kind: kind.String(), Data: string(data)}
			},
			OnError: func(err error) {
				events <- wsEvent{Kind: "error", Err: err}
			},
			OnClose: func() {
				close(closed)
			},
		},
	})
	if err != nil {
		var he *emulation.HandshakeError
		if errors.As(err, &he) && he.Status != 0 {
			return 0, nil, nil, fmt.Errorf("connection failed: %v (HTTP %d)", he.Err, he.Status)
		}
		return 0, nil, nil, fmt.Errorf("connection failed: %w", err)
	}
	return handle, events, closed, nil
}

// closeAndDrain closes the connection and waits for the terminal close
// delivery so the peer sees a clean shutdown.
func closeAndDrain(b *bridge.Bridge, handle registry.Handle, closed <-chan struct{}) {
	if err := b.Close(handle); err != nil && !errors.Is(err, bridge.ErrConnectionNotFound) {
		output.Warn("close failed: %v", err)
		return
	}
	select {
	case <-closed:
	case <-time.After(5 * time.Second):
	}
}

// drainEvents prints events still buffered when the close arrived. The
// close callback is always the last delivery, so nothing new appears after
// it fires.
func drainEvents(events <-chan wsEvent) {
	for {
		select {
		case evt := <-events:
			printInbound(evt)
		default:
			return
		}
	}
}

func runWSConnect(cmd *cobra.Command, args []string) error {
	url := args[0]
	b := newBridge()
	defer b.Shutdown()

	fmt.Fprintf(os.Stderr, "Connecting to %s...\n", url)
	handle, events, closed, err := openConnection(cmd.Context(), b, url)
	if err != nil {
		return err
	}
	fmt.Println("Connected. Type messages and press Enter to send. Ctrl+C to exit.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	inputChan := make(chan string, 10)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			inputChan <- scanner.Text()
		}
	}()

	for {
		select {
		case <-sigChan:
			fmt.Println("\nDisconnecting...")
			closeAndDrain(b, handle, closed)
			return nil
		case <-closed:
			drainEvents(events)
			fmt.Println("Connection closed by server")
			return nil
		case evt := <-events:
			printInbound(evt)
		case line := <-inputChan:
			if line == "" {
				continue
			}
			if err := b.SendText(handle, line); err != nil {
				if errors.Is(err, bridge.ErrConnectionNotFound) || errors.Is(err, stream.ErrConnectionClosed) {
					fmt.Println("Connection closed by server")
					return nil
				}
				return fmt.Errorf("send error: %w", err)
			}
			printOutbound(line)
		}
	}
}

func runWSSend(cmd *cobra.Command, args []string) error {
	url := args[0]
	payload, err := readPayload(args[1])
	if err != nil {
		return err
	}

	b := newBridge()
	defer b.Shutdown()

	handle, _, closed, err := openConnection(cmd.Context(), b, url)
	if err != nil {
		return err
	}

	if err := b.SendText(handle, string(payload)); err != nil {
		return fmt.Errorf("send error: %w", err)
	}
	closeAndDrain(b, handle, closed)

	if jsonOutput {
		return output.JSON(map[string]any{
			"success":   true,
			"url":       url,
			"message":   string(payload),
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
	fmt.Printf("Sent to %s: %s\n", url, string(payload))
	return nil
}

func runWSListen(cmd *cobra.Command, args []string) error {
	url := args[0]
	b := newBridge()
	defer b.Shutdown()

	fmt.Fprintf(os.Stderr, "Connecting to %s...\n", url)
	handle, events, closed, err := openConnection(cmd.Context(), b, url)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, "Listening. Ctrl+C to exit.")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	received := 0
	for {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\nDisconnecting...")
			closeAndDrain(b, handle, closed)
			return nil
		case <-closed:
			drainEvents(events)
			fmt.Fprintln(os.Stderr, "Connection closed by server")
			return nil
		case evt := <-events:
			printInbound(evt)
			if evt.Kind != "error" {
				received++
				if wsCount > 0 && received >= wsCount {
					closeAndDrain(b, handle, closed)
					return nil
				}
			}
		}
	}
}

func printInbound(evt wsEvent) {
	if evt.Kind == "error" {
		fmt.Fprintf(os.Stderr, "Error: %v\n", evt.Err)
		return
	}
	if jsonOutput {
		if err := output.Line(wsRecord{
			Direction: "received",
			Type:      evt.Kind,
			Data:      evt.Data,
			Timestamp: time.Now().Format(time.RFC3339),
		}); err != nil {
			output.Warn("failed to encode output: %v", err)
		}
		return
	}
	fmt.Printf("< %s\n", evt.Data)
}

func printOutbound(line string) {
	if jsonOutput {
		if err := output.Line(wsRecord{
			Direction: "sent",
			Type:      "text",
			Data:      line,
			Timestamp: time.Now().Format(time.RFC3339),
		}); err != nil {
			output.Warn("failed to encode output: %v", err)
		}
		return
	}
	fmt.Printf("> %s\n", line)
}

func init() {
	rootCmd.AddCommand(wsCmd)
	wsCmd.AddCommand(wsConnectCmd, wsSendCmd, wsListenCmd)

	wsCmd.PersistentFlags().StringArrayVarP(&wsHeaders, "header", "H", nil, "Upgrade header (\"Name: value\"), repeatable")
	wsCmd.PersistentFlags().DurationVarP(&wsTimeout, "timeout", "t", 30*time.Second, "Handshake timeout")
	wsListenCmd.Flags().IntVarP(&wsCount, "count", "n", 0, "Number of messages to receive (0 = unlimited)")
}
