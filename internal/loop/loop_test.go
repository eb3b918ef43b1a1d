package loop_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/yawrate/internal/flight"
	"github.com/san-kum/yawrate/internal/integrators"
	"github.com/san-kum/yawrate/internal/loop"
	"github.com/san-kum/yawrate/internal/pids"
	"github.com/san-kum/yawrate/internal/plant"
	"github.com/san-kum/yawrate/internal/profile"
)

type countingObserver struct {
	ticks []loop.Tick
}

func (c *countingObserver) OnTick(t loop.Tick) { c.ticks = append(c.ticks, t) }

// cancelAfter cancels its context once n ticks have been observed.
type cancelAfter struct {
	n      int
	seen   int
	cancel context.CancelFunc
}

func (c *cancelAfter) OnTick(loop.Tick) {
	c.seen++
	if c.seen == c.n {
		c.cancel()
	}
}

type tickCount struct{ n int }

func (m *tickCount) Name() string      { return "ticks" }
func (m *tickCount) Observe(loop.Tick) { m.n++ }
func (m *tickCount) Value() float64    { return float64(m.n) }
func (m *tickCount) Reset()            { m.n = 0 }

// divergent produces NaN once the command goes positive.
type divergent struct{}

func (d *divergent) Derive(x plant.State, u plant.Control, t float64) plant.State {
	if u[0] > 0 {
		return plant.State{math.NaN(), math.NaN()}
	}
	return plant.State{0, 0}
}
func (d *divergent) StateDim() int   { return 2 }
func (d *divergent) ControlDim() int { return 1 }

var _ = Describe("Loop", func() {
	var (
		yaw *plant.Yaw
		cfg loop.Config
	)

	BeforeEach(func() {
		yaw = plant.NewYaw()
		cfg = loop.DefaultConfig()
		cfg.Duration = 3
	})

	newLoop := func(p profile.Profile) *loop.Loop {
		return loop.New(yaw, integrators.NewRK4(), p, cfg.ThrottleCut)
	}

	It("runs one tick per period", func() {
		cfg.RateHz = 100
		cfg.Duration = 1
		l := newLoop(profile.Hold(0.5, 0))

		res, err := l.Run(context.Background(), plant.State{0, 0}, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Ticks).To(HaveLen(100))
		Expect(res.States).To(HaveLen(101))
		Expect(res.Ticks[99].Time).To(BeNumerically("~", 0.99, 1e-12))
	})

	It("holds zero command with zero demand at rest", func() {
		l := newLoop(profile.Hold(0.5, 0))

		res, err := l.Run(context.Background(), plant.State{0, 0}, cfg)
		Expect(err).NotTo(HaveOccurred())
		for _, tk := range res.Ticks {
			Expect(tk.Command).To(Equal(0.0))
			Expect(tk.Integral).To(Equal(0.0))
		}
	})

	It("settles at the proportional fixed point with a saturated integral term", func() {
		const r = 0.5
		l := newLoop(profile.Hold(0.5, r))

		res, err := l.Run(context.Background(), plant.State{0, 0}, cfg)
		Expect(err).NotTo(HaveOccurred())

		gain := yaw.Authority / yaw.Damping
		want := gain * (pids.KP*r + pids.KI*pids.WindupMax) / (1 + gain*pids.KP)
		last := res.Ticks[len(res.Ticks)-1]
		Expect(last.DPsi).To(BeNumerically("~", want, 1e-3))

		// The carried integral keeps growing past the windup limit.
		Expect(last.Integral).To(BeNumerically(">", pids.WindupMax))
	})

	It("matches manual threading of the law", func() {
		l := newLoop(profile.Doublet(0.5, 0.4, 0.1, 0.3))
		cfg.Duration = 1

		res, err := l.Run(context.Background(), plant.State{0, 0}, cfg)
		Expect(err).NotTo(HaveOccurred())

		manual := pids.New()
		for i, tk := range res.Ticks {
			d := flight.Demands{Throttle: tk.Throttle, Yaw: tk.Demand}
			vs := plant.VehicleState(res.States[i])

			out, next := pids.Run(d, &vs, manual.State)
			manual = next
			Expect(tk.Command).To(Equal(out.Yaw))
			Expect(tk.Integral).To(Equal(manual.State.ErrorIntegral))
		}
	})

	It("flags anti-windup resets on fast demands", func() {
		l := newLoop(profile.Step(0.5, 2.0, 0.5))

		res, err := l.Run(context.Background(), plant.State{0, 0}, cfg)
		Expect(err).NotTo(HaveOccurred())

		var first loop.Tick
		for _, tk := range res.Ticks {
			if tk.Demand != 0 {
				first = tk
				break
			}
		}
		Expect(first.Index).To(BeNumerically(">", 0))
		Expect(first.Reset).To(BeTrue())
		Expect(first.Integral).To(BeNumerically("~", first.RateError(), 1e-12))
		Expect(res.Ticks[0].Reset).To(BeFalse())
	})

	It("re-seeds the controller during a throttle cut", func() {
		p := profile.ThrottleCut{Profile: profile.Hold(0.5, 0.2), From: 1, To: 1.5}
		l := newLoop(p)

		res, err := l.Run(context.Background(), plant.State{0, 0}, cfg)
		Expect(err).NotTo(HaveOccurred())

		for _, tk := range res.Ticks {
			if tk.Cut {
				Expect(tk.Integral).To(BeNumerically("~", tk.RateError(), 1e-12))
			}
		}
		Expect(res.Ticks[int(1.2*cfg.RateHz)].Cut).To(BeTrue())
		Expect(res.Ticks[int(2*cfg.RateHz)].Cut).To(BeFalse())
	})

	It("feeds metrics and observers every tick", func() {
		l := newLoop(profile.Hold(0.5, 0.1))
		obs := &countingObserver{}
		l.AddObserver(obs)
		l.AddMetric(&tickCount{})

		res, err := l.Run(context.Background(), plant.State{0, 0}, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(obs.ticks).To(HaveLen(cfg.Ticks()))
		Expect(res.Metrics).To(HaveKeyWithValue("ticks", float64(cfg.Ticks())))
	})

	It("rejects invalid configs", func() {
		l := newLoop(profile.Hold(0.5, 0))
		for _, bad := range []loop.Config{
			{RateHz: 0, Duration: 1},
			{RateHz: 100, Duration: 0},
			{RateHz: 100, Duration: 0.001},
		} {
			_, err := l.Run(context.Background(), plant.State{0, 0}, bad)
			Expect(errors.Is(err, flight.ErrInvalidConfig)).To(BeTrue())
		}
	})

	It("stops on a non-finite plant state", func() {
		l := loop.New(&divergent{}, integrators.NewEuler(), profile.Step(0.5, 0.3, 0.5), 0.05)

		res, err := l.Run(context.Background(), plant.State{0, 0}, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Errors).To(HaveLen(1))

		var tickErr *flight.TickError
		Expect(errors.As(res.Errors[0], &tickErr)).To(BeTrue())
		last := res.Ticks[len(res.Ticks)-1]
		Expect(tickErr.Tick).To(Equal(last.Index))
		Expect(last.Demand).To(Equal(0.3))
		Expect(res.Ticks[last.Index-1].Demand).To(Equal(0.0))
		Expect(errors.Is(res.Errors[0], flight.ErrInvalidState)).To(BeTrue())
	})

	It("returns the partial result when canceled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		l := newLoop(profile.Hold(0.5, 0.1))
		res, err := l.Run(ctx, plant.State{0, 0}, cfg)
		Expect(err).To(MatchError(context.Canceled))
		Expect(res.Ticks).To(BeEmpty())
	})

	It("reports metrics for the ticks run before cancellation", func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		l := newLoop(profile.Hold(0.5, 0.1))
		m := &tickCount{}
		l.AddMetric(m)
		l.AddObserver(&cancelAfter{n: 10, cancel: cancel})

		res, err := l.Run(ctx, plant.State{0, 0}, cfg)
		Expect(err).To(MatchError(context.Canceled))
		Expect(res.Ticks).To(HaveLen(10))
		Expect(res.Metrics).To(HaveKeyWithValue("ticks", 10.0))
	})
})
