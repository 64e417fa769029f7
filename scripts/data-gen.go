/*
	Basic script that writes a log file in the on-disk record format, for
	exercising replay and crash recovery by hand.

	Usage:
		go run scripts/data-gen.go -out data.db -n 1000 -torn
*/

package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"
)

const (
	totalKeys   = 100
	totalValues = 100
)

func main() {
	out := flag.String("out", "data.db", "output log file")
	n := flag.Int("n", 1000, "number of records to write")
	torn := flag.Bool("torn", false, "append a truncated record fragment at the end")
	flag.Parse()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	f, err := os.OpenFile(*out, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Println("open error:", err)
		os.Exit(1)
	}
	defer f.Close()

	keys := makeKeys(totalKeys)
	values := makeValues(totalValues)

	for i := 0; i < *n; i++ {
		key := keys[rng.Intn(len(keys))]
		value := values[rng.Intn(len(values))]
		if _, err := f.Write(encodeRecord(key, value)); err != nil {
			fmt.Println("write error:", err)
			os.Exit(1)
		}
	}

	if *torn {
		// A complete header plus part of the key, as if the process died
		// mid-append. Replay must drop this fragment.
		record := encodeRecord("torn-tail-key", "never-committed")
		if _, err := f.Write(record[:len(record)/2]); err != nil {
			fmt.Println("write error:", err)
			os.Exit(1)
		}
	}

	if err := f.Sync(); err != nil {
		fmt.Println("sync error:", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %d records to %s (torn tail: %v)\n", *n, *out, *torn)
}

func encodeRecord(key, value string) []byte {
	buf := make([]byte, 8+len(key)+len(value))
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(key)))
	binary.BigEndian.PutUint32(buf[4:8], uint32(len(value)))
	copy(buf[8:], key)
	copy(buf[8+len(key):], value)
	return buf
}

func makeKeys(n int) []string {
	keys := make([]string, n)
	for i := range keys {
		keys[i] = fmt.Sprintf("key-%03d", i)
	}
	return keys
}

func makeValues(n int) []string {
	values := make([]string, n)
	for i := range values {
		values[i] = fmt.Sprintf("value %d with some filler text", i)
	}
	return values
}
