// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package netutil

import (
	"fmt"
	"io"
	"net"
	"sync/atomic"

	"github.com/VictoriaMetrics/metrics"
)

// connMetrics holds the per-listener/per-dialer counters for a named group
// of connections, identified by group, name and remote address.
type connMetrics struct {
	readCalls     *metrics.Counter
	readBytes     *metrics.Counter
	readErrors    *metrics.Counter
	readTimeouts  *metrics.Counter
	writeCalls    *metrics.Counter
	writtenBytes  *metrics.Counter
	writeErrors   *metrics.Counter
	writeTimeouts *metrics.Counter
	closeErrors   *metrics.Counter
	conns         *metrics.Counter
}

func (cm *connMetrics) init(ms *metrics.Set, group, name, addr string) {
	cm.readCalls = ms.NewCounter(fmt.Sprintf(`%s_conn_read_calls_total{name=%q,addr=%q}`, group, name, addr))
	cm.readBytes = ms.NewCounter(fmt.Sprintf(`%s_conn_read_bytes_total{name=%q,addr=%q}`, group, name, addr))
	cm.readErrors = ms.NewCounter(fmt.Sprintf(`%s_conn_read_errors_total{name=%q,addr=%q}`, group, name, addr))
	cm.readTimeouts = ms.NewCounter(fmt.Sprintf(`%s_conn_read_timeouts_total{name=%q,addr=%q}`, group, name, addr))
	cm.writeCalls = ms.NewCounter(fmt.Sprintf(`%s_conn_write_calls_total{name=%q,addr=%q}`, group, name, addr))
	cm.writtenBytes = ms.NewCounter(fmt.Sprintf(`%s_conn_written_bytes_total{name=%q,addr=%q}`, group, name, addr))
	cm.writeErrors = ms.NewCounter(fmt.Sprintf(`%s_conn_write_errors_total{name=%q,addr=%q}`, group, name, addr))
	cm.writeTimeouts = ms.NewCounter(fmt.Sprintf(`%s_conn_write_timeouts_total{name=%q,addr=%q}`, group, name, addr))
	cm.closeErrors = ms.NewCounter(fmt.Sprintf(`%s_conn_close_errors_total{name=%q,addr=%q}`, group, name, addr))
	cm.conns = ms.NewCounter(fmt.Sprintf(`%s_conns_total{name=%q,addr=%q}`, group, name, addr))
}

// statConn wraps a net.Conn, recording call counts, byte counts and
// timeout/error outcomes against a shared connMetrics.
type statConn struct {
	net.Conn
	cm     *connMetrics
	closed int32
}

// NewStatConn wraps conn so its Read/Write/Close calls are recorded under
// the given group/name, keyed by conn's remote address.
func NewStatConn(group, name string, conn net.Conn) net.Conn {
	cm := &connMetrics{}
	addr := ""
	if ra := conn.RemoteAddr(); ra != nil {
		addr = ra.String()
	}
	cm.init(metrics.GetDefaultSet(), group, name, addr)
	return &statConn{Conn: conn, cm: cm}
}

func (sc *statConn) Read(p []byte) (int, error) {
	n, err := sc.Conn.Read(p)
	sc.cm.readCalls.Inc()
	if n > 0 {
		sc.cm.readBytes.Add(n)
	}
	if err != nil && err != io.EOF {
		if isTimeout(err) {
			sc.cm.readTimeouts.Inc()
		} else {
			sc.cm.readErrors.Inc()
		}
	}
	return n, err
}

func (sc *statConn) Write(p []byte) (int, error) {
	n, err := sc.Conn.Write(p)
	sc.cm.writeCalls.Inc()
	if n > 0 {
		sc.cm.writtenBytes.Add(n)
	}
	if err != nil {
		if isTimeout(err) {
			sc.cm.writeTimeouts.Inc()
		} else {
			sc.cm.writeErrors.Inc()
		}
	}
	return n, err
}

// Close closes the underlying connection exactly once; later calls are
// no-ops so double-close from both a defer and explicit cleanup path don't
// double-count metrics.
func (sc *statConn) Close() error {
	if !atomic.CompareAndSwapInt32(&sc.closed, 0, 1) {
		return nil
	}
	err := sc.Conn.Close()
	if err != nil {
		sc.cm.closeErrors.Inc()
	}
	sc.cm.conns.Inc()
	return err
}

func isTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}
