package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/transcript/internal/dispatch"
	"github.com/user/transcript/internal/types"
)

var daemonAddr string

func init() {
	conversationsCmd.PersistentFlags().StringVar(&daemonAddr, "addr", "", "daemon address (default http.listen)")
	conversationsShowCmd.Flags().BoolVar(&showJSON, "json", false, "print the raw transcript JSON")
	rootCmd.AddCommand(conversationsCmd)
	conversationsCmd.AddCommand(conversationsListCmd, conversationsShowCmd)
}

var showJSON bool

var conversationsCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"conv"},
	Short:   "Inspect conversations held by the running daemon",
}

var conversationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp struct {
			Conversations []types.ConversationKey `json:"conversations"`
		}
		if err := daemonGet(cmd.Context(), "/conversations", &resp); err != nil {
			return err
		}
		if len(resp.Conversations) == 0 {
			fmt.Println("No conversations found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tSOURCE\tEVENTS\tSECTIONS\tMAX SEQ\tTYPING")
		for _, key := range resp.Conversations {
			t, err := fetchTranscript(cmd.Context(), key)
			if err != nil {
				fmt.Fprintf(w, "%s\t%s\t?\t?\t?\t?\n", key, key.Source())
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%t\n",
				key,
				key.Source(),
				t.Snapshot.Events,
				len(t.Snapshot.Sections),
				t.Snapshot.MaxSeq,
				t.Snapshot.Typing,
			)
		}
		return w.Flush()
	},
}

var conversationsShowCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Show a conversation's rendered transcript and recent instructions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := fetchTranscript(cmd.Context(), types.ConversationKey(args[0]))
		if err != nil {
			return err
		}
		if showJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(t)
		}

		fmt.Printf("%s (%s)\n", t.Key, t.ID)
		if err := printSnapshot(os.Stdout, t.Snapshot); err != nil {
			return err
		}
		if len(t.Recent) > 0 {
			fmt.Println()
			fmt.Println("recent instructions:")
			for _, batch := range t.Recent {
				parts := make([]string, len(batch))
				for i, in := range batch {
					parts[i] = in.String()
				}
				fmt.Printf("  %s\n", strings.Join(parts, " "))
			}
		}
		return nil
	},
}

func fetchTranscript(ctx context.Context, key types.ConversationKey) (*dispatch.Transcript, error) {
	var t dispatch.Transcript
	path := "/conversations/" + url.PathEscape(string(key)) + "/transcript"
	if err := daemonGet(ctx, path, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func daemonBaseURL() string {
	addr := daemonAddr
	if addr == "" {
		addr = loadConfig().HTTP.Listen
	}
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	return strings.TrimRight(addr, "/")
}

func daemonGet(ctx context.Context, path string, v any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, daemonBaseURL()+path, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("daemon not reachable (is `transcript serve` running with http.enabled?): %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("daemon returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode daemon response: %w", err)
	}
	return nil
}
