package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/san-kum/yawrate/internal/flight"
	"github.com/san-kum/yawrate/internal/log"
	"github.com/san-kum/yawrate/internal/loop"
)

// Proxy receives telemetry frames, runs them through a loop driver and
// sends the corrected demands to the motor address.
type Proxy struct {
	conn   *net.UDPConn
	motor  *net.UDPAddr
	driver *loop.Driver
	log    *slog.Logger
	frames int
}

func Listen(telemAddr, motorAddr string, driver *loop.Driver) (*Proxy, error) {
	laddr, err := net.ResolveUDPAddr("udp", telemAddr)
	if err != nil {
		return nil, fmt.Errorf("telemetry address: %w", err)
	}
	maddr, err := net.ResolveUDPAddr("udp", motorAddr)
	if err != nil {
		return nil, fmt.Errorf("motor address: %w", err)
	}

	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, err
	}

	return &Proxy{
		conn:   conn,
		motor:  maddr,
		driver: driver,
		log:    log.With("component", "proxy", "telem", conn.LocalAddr().String(), "motor", maddr.String()),
	}, nil
}

func (p *Proxy) Addr() net.Addr {
	return p.conn.LocalAddr()
}

// Frames is the number of frames served so far.
func (p *Proxy) Frames() int {
	return p.frames
}

func (p *Proxy) Close() error {
	return p.conn.Close()
}

// Serve handles frames until a halted frame arrives (returns nil), the
// context is canceled, or the socket fails. It closes the socket on return.
func (p *Proxy) Serve(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			p.conn.Close()
		case <-done:
		}
	}()
	defer p.conn.Close()

	p.log.Info("serving")
	buf := make([]byte, FrameSize)
	for {
		err := p.serveOne(buf)
		switch {
		case err == nil:
			continue
		case errors.Is(err, flight.ErrHalted):
			p.log.Info("simulator halted", "frames", p.frames)
			return nil
		case errors.Is(err, flight.ErrShortFrame):
			p.log.Warn("dropping frame", "err", err)
			continue
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			return err
		}
	}
}

func (p *Proxy) serveOne(buf []byte) error {
	n, _, err := p.conn.ReadFromUDP(buf)
	if err != nil {
		return err
	}

	frame, err := Decode(buf[:n])
	if err != nil {
		return err
	}
	if frame.Halted() {
		return flight.ErrHalted
	}

	out := p.driver.Step(frame.Demands, &frame.State)
	p.frames++
	p.log.Debug("frame", "t", frame.Time, "dpsi", frame.State.DPsi, "yaw", out.Yaw,
		"integral", p.driver.State().State.ErrorIntegral)

	if _, err := p.conn.WriteToUDP(EncodeDemands(out), p.motor); err != nil {
		return fmt.Errorf("send demands: %w", err)
	}
	return nil
}
