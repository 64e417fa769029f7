package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/logcask/logcask/internal"
	"github.com/logcask/logcask/logcask"
)

const helpText = `
Available Commands:

PING
  Check if the server is alive.
  Response: PONG

SET <key> <value>
  Store a value for the given key. The value is everything after the key,
  embedded spaces included. Overwrites the value if the key already exists.
  Response: OK

GET <key>
  Retrieve the value associated with the key.
  Response: value | (nil)

EXISTS <key>
  Check if a key exists.
  Response: true | false

COUNT
  Return the total number of keys stored.
  Response: integer

KEYS
  List all stored keys on one line, sorted.
  Response: keys | (nil)

HELP (cli only)
  Show this help message.

EXIT (cli only)
  Close the client connection.
`

func main() {
	host := flag.String("host", internal.DefaultHost, "logcask server host")
	port := flag.Int("port", internal.DefaultPort, "logcask server port")
	exec := flag.String("e", "", "Execute a single command (shell quoting allowed) and exit")
	flag.Parse()

	client, err := logcask.Connect(logcask.WithHost(*host), logcask.WithPort(*port))
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	if *exec != "" {
		resp, err := executeQuoted(client, *exec)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(resp)
		return
	}

	fmt.Printf("Connected to %v:%d\n", *host, *port)
	fmt.Println("Type commands. 'help' for information or 'exit' to quit.")

	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Print("> ")

		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}

		line = strings.TrimSpace(line)

		if line == "" {
			continue
		}

		switch strings.ToLower(line) {
		case "exit":
			return
		case "help":
			fmt.Println(strings.TrimSpace(helpText))
			continue
		}

		resp, err := client.Execute(line)
		if err != nil {
			log.Fatal(err)
		}

		fmt.Println(resp)
	}
}

// executeQuoted parses a one-shot command with shell quoting rules, so a
// multi-word value can be passed as a single quoted argument:
//
//	logcask-cli -e 'SET greeting "hello world"'
func executeQuoted(client *logcask.Client, input string) (string, error) {
	words, err := shellquote.Split(input)
	if err != nil {
		return "", fmt.Errorf("parse error: %w", err)
	}
	if len(words) == 0 {
		return "", fmt.Errorf("empty command")
	}
	return client.Execute(strings.Join(words, " "))
}
