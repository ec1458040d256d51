package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/honganh1206/sift/engine"
	"github.com/honganh1206/sift/message"
)

func newIndexCmd() *cobra.Command {
	var corpusPath string
	var rebuild bool

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Import messages and (re)build the search index",
		Long: `Reads newline-delimited JSON messages into the local corpus and
updates the search index. Without --corpus, rebuilds the index from the
messages already stored.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			e, store, cleanup, err := openEngine(cmd, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			if corpusPath != "" {
				n, err := importCorpus(cmd, corpusPath, store, e)
				if err != nil {
					return err
				}
				fmt.Printf("Imported %d messages.\n", n)
			} else if rebuild {
				if err := e.Rebuild(cmd.Context()); err != nil {
					return err
				}
			}

			fmt.Printf("Index holds %d messages across %d terms.\n", e.DocCount(), e.TermCount())
			return nil
		},
	}

	cmd.Flags().StringVarP(&corpusPath, "corpus", "c", "", "NDJSON file of messages to import")
	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "Re-tokenize the whole corpus from scratch")

	return cmd
}

func importCorpus(cmd *cobra.Command, path string, store *message.SQLiteStore, e *engine.Engine) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	count := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var msg message.Message
		if err := json.Unmarshal(line, &msg); err != nil {
			return count, fmt.Errorf("parse corpus line %d: %w", count+1, err)
		}
		if msg.ID == "" {
			msg.ID = uuid.NewString()
		}
		if msg.Timestamp.IsZero() {
			msg.Timestamp = time.Now()
		}
		if msg.Type == "" {
			msg.Type = message.TypeText
		}

		if err := store.Put(cmd.Context(), msg); err != nil {
			return count, fmt.Errorf("store message %s: %w", msg.ID, err)
		}
		e.OnMessageCreated(msg)
		count++
	}

	return count, scanner.Err()
}
