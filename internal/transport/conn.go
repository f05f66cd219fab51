package transport

// Conn is one upgraded bidirectional channel. The socket handler that
// receives it owns it until Close; Close is safe to call from any
// goroutine and unblocks a pending ReadEnvelope.
type Conn interface {
	ReadEnvelope() (*Envelope, error)
	WriteEnvelope(*Envelope) error
	Close() error
	RemoteAddr() string
}
