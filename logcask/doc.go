// Package logcask provides a client for interacting with a logcask
// key-value store over TCP using its line-oriented command protocol.
//
// Example:
//
//	client, err := logcask.Connect()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Set("foo", "bar")
//	val, found, err := client.Get("foo")
package logcask
