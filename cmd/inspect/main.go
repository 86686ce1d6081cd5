// Command inspect dumps the persisted conversation states of a session
// database, for poking at a live deployment's FSM records.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"

	"task-bot/domain"
)

func main() {
	dbPath := flag.String("db", "./data/sessions", "Path to badger DB")
	// Sessions live under fsm:<namespace>:; narrow with e.g. -prefix fsm:main:
	prefix := flag.String("prefix", "fsm:", "Prefix to scan")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Chat ID", "Step", "Scratch", "Updated At"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	count := 0
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			key := string(item.Key())

			err := item.Value(func(v []byte) error {
				var state domain.ConversationState
				if err := json.Unmarshal(v, &state); err != nil {
					// Log and keep going instead of stopping the whole dump.
					fmt.Printf("Error unmarshaling key %s: %v\n", key, err)
					return nil
				}

				scratch := ""
				for k, value := range state.Scratch {
					scratch += fmt.Sprintf("%s=%s ", k, value)
				}

				table.Append([]string{
					key,
					fmt.Sprintf("%d", state.ChatID),
					string(state.CurrentStep),
					scratch,
					state.UpdatedAt.Format("2006-01-02 15:04:05"),
				})
				count++
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal("Error while scanning: ", err)
	}

	table.Render()
	fmt.Printf("\n%d conversation state(s) under prefix %q\n", count, *prefix)
}

func openDB(path string) (*badger.DB, error) {
	options := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil)
	return badger.Open(options)
}
