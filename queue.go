package main

import "net"

// connQueue is an unbounded FIFO of connections. Sends on In never wait for
// the worker reading Out; pending connections are held by the forwarding
// goroutine until the worker takes them.
type connQueue struct {
	In  chan<- net.Conn
	Out <-chan net.Conn
}

func newConnQueue() *connQueue {
	in := make(chan net.Conn)
	out := make(chan net.Conn)
	go forwardConns(in, out)
	return &connQueue{In: in, Out: out}
}

func forwardConns(in <-chan net.Conn, out chan<- net.Conn) {
	var pending []net.Conn
	for in != nil || len(pending) > 0 {
		var send chan<- net.Conn
		var next net.Conn
		if len(pending) > 0 {
			send, next = out, pending[0]
		}
		select {
		case conn, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			pending = append(pending, conn)
		case send <- next:
			pending[0] = nil
			pending = pending[1:]
		}
	}
	close(out)
}

func (q *connQueue) Close() {
	close(q.In)
}
