package logcask

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/logcask/logcask/internal"
	"github.com/logcask/logcask/internal/protocol"
)

type Client struct {
	conn net.Conn
	r    *bufio.Reader
}

func Connect(opts ...Option) (*Client, error) {
	cfg := internal.DefaultConfig()

	for _, opt := range opts {
		opt(cfg)
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}

	return &Client{conn: conn, r: bufio.NewReader(conn)}, nil
}

// Execute sends one raw command line and returns the single response line.
func (c *Client) Execute(line string) (string, error) {
	if _, err := fmt.Fprintf(c.conn, "%s\n", line); err != nil {
		return "", err
	}
	return protocol.ReadLine(c.r)
}

// Set stores value under key. The server's error line, if any, is returned
// as an error.
func (c *Client) Set(key, value string) error {
	resp, err := c.Execute(fmt.Sprintf("%s %s %s", protocol.VerbSet, key, value))
	if err != nil {
		return err
	}
	if resp != protocol.ResponseOK {
		return errors.New(resp)
	}
	return nil
}

// Get fetches the value for key. A miss is reported as found == false with
// a nil error.
func (c *Client) Get(key string) (value string, found bool, err error) {
	resp, err := c.Execute(protocol.VerbGet + " " + key)
	if err != nil {
		return "", false, err
	}
	if resp == protocol.ResponseNil {
		return "", false, nil
	}
	if protocol.IsError(resp) {
		return "", false, errors.New(resp)
	}
	return resp, true, nil
}

// Exists reports whether key is present.
func (c *Client) Exists(key string) (bool, error) {
	resp, err := c.Execute(protocol.VerbExists + " " + key)
	if err != nil {
		return false, err
	}
	if protocol.IsError(resp) {
		return false, errors.New(resp)
	}
	return resp == "true", nil
}

// Count returns the number of live keys.
func (c *Client) Count() (int, error) {
	resp, err := c.Execute(protocol.VerbCount)
	if err != nil {
		return 0, err
	}
	if protocol.IsError(resp) {
		return 0, errors.New(resp)
	}
	return strconv.Atoi(resp)
}

// Ping checks that the server is responsive.
func (c *Client) Ping() error {
	resp, err := c.Execute(protocol.VerbPing)
	if err != nil {
		return err
	}
	if resp != protocol.ResponsePong {
		return errors.New(resp)
	}
	return nil
}

// Close ends the session. EXIT is sent best-effort before the connection
// is torn down.
func (c *Client) Close() {
	fmt.Fprintf(c.conn, "%s\n", protocol.VerbExit)
	c.conn.Close()
}
