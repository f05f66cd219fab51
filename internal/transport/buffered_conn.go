package transport

import (
	"bufio"
	"net"
	"sync"
)

const defaultBufferSize = 32 * 1024

// BufferedConn frames envelopes as newline-delimited JSON over a raw
// net.Conn. It backs in-process endpoints where a websocket handshake
// would be overhead; handlers treat it and WSConn uniformly.
type BufferedConn struct {
	conn    net.Conn
	reader  *bufio.Reader
	writer  *bufio.Writer
	writeMu sync.Mutex
}

func NewBufferedConn(conn net.Conn) *BufferedConn {
	return &BufferedConn{
		conn:   conn,
		reader: bufio.NewReaderSize(conn, defaultBufferSize),
		writer: bufio.NewWriterSize(conn, defaultBufferSize),
	}
}

// Pipe returns both ends of an in-process connection.
func Pipe() (*BufferedConn, *BufferedConn) {
	a, b := net.Pipe()
	return NewBufferedConn(a), NewBufferedConn(b)
}

func (c *BufferedConn) ReadEnvelope() (*Envelope, error) {
	line, err := c.reader.ReadBytes('\n')
	if err != nil {
		return nil, err
	}
	return DecodeEnvelope(line)
}

func (c *BufferedConn) WriteEnvelope(env *Envelope) error {
	data, err := EncodeEnvelope(env)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.writer.Write(data); err != nil {
		return err
	}
	if err := c.writer.WriteByte('\n'); err != nil {
		return err
	}
	return c.writer.Flush()
}

func (c *BufferedConn) Close() error {
	return c.conn.Close()
}

func (c *BufferedConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
