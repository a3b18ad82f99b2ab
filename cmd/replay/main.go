// Command replay is a reference push-transport consumer: it reads
// newline-delimited TransactionUpdate JSON records from a file or stdin and
// feeds them to the parser front end, printing each decoded envelope. It
// does not reconnect or retry; that policy belongs to a real collaborator,
// not this debugging tool.
package main

import (
	"bufio"
	"context"
	"io"
	"log"
	"os"

	gojson "github.com/goccy/go-json"

	"github.com/rawblock/dex-arb-engine/internal/parser"
	"github.com/rawblock/dex-arb-engine/internal/schemas"
	"github.com/rawblock/dex-arb-engine/internal/transport"
	"github.com/rawblock/dex-arb-engine/pkg/models"
)

// ndjsonSubscriber implements transport.Subscriber over a newline-delimited
// JSON stream. One record per line; malformed lines are logged and skipped.
type ndjsonSubscriber struct {
	in io.Reader
}

func (s *ndjsonSubscriber) Subscribe(ctx context.Context, handle func(models.TransactionUpdate)) error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var tx models.TransactionUpdate
		if err := gojson.Unmarshal(line, &tx); err != nil {
			log.Printf("skip malformed line: %v", err)
			continue
		}
		handle(tx)
	}
	return scanner.Err()
}

func main() {
	var in io.Reader = os.Stdin
	if path := os.Getenv("REPLAY_FILE"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			log.Fatalf("FATAL: open %s: %v", path, err)
		}
		defer f.Close()
		in = f
	}

	reg, err := schemas.Default()
	if err != nil {
		log.Fatalf("FATAL: failed to load embedded schemas: %v", err)
	}
	front := parser.New(reg)

	var sub transport.Subscriber = &ndjsonSubscriber{in: in}

	var txCount, envCount int
	err = sub.Subscribe(context.Background(), func(tx models.TransactionUpdate) {
		txCount++
		front.HandleUpdate(&tx, func(env models.EventEnvelope) {
			envCount++
			out, err := gojson.Marshal(env)
			if err != nil {
				log.Printf("encode envelope: %v", err)
				return
			}
			os.Stdout.Write(out)
			os.Stdout.Write([]byte("\n"))
		})
	})
	if err != nil {
		log.Fatalf("FATAL: read input: %v", err)
	}
	log.Printf("replayed %d transactions, decoded %d envelopes", txCount, envCount)
}
