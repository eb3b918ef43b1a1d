package loop_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/yawrate/internal/flight"
	"github.com/san-kum/yawrate/internal/loop"
	"github.com/san-kum/yawrate/internal/pids"
)

var _ = Describe("Driver", func() {
	var driver *loop.Driver

	BeforeEach(func() {
		driver = loop.NewDriver(0.05)
	})

	It("starts from a fresh controller", func() {
		Expect(driver.State()).To(Equal(pids.New()))
	})

	It("threads state exactly like manual chaining", func() {
		demands := []float64{0.1, 0.2, 0.3, 2.0, 0.1, -0.4, -0.4, 0.0}
		rates := []float64{0.0, 0.05, 0.1, 0.0, 0.2, 0.1, -0.3, 0.0}

		manual := pids.New()
		for i := range demands {
			d := flight.Demands{Throttle: 0.5, Roll: 0.1, Pitch: -0.1, Yaw: demands[i]}
			vs := flight.VehicleState{DPsi: rates[i]}

			want, next := pids.Run(d, &vs, manual.State)
			manual = next

			got := driver.Step(d, &vs)
			Expect(got).To(Equal(want))
			Expect(driver.State()).To(Equal(manual))
		}
	})

	It("re-seeds the controller while the throttle is cut", func() {
		for i := 0; i < 10; i++ {
			driver.Step(flight.Demands{Throttle: 0.5, Yaw: 0.5}, &flight.VehicleState{})
		}
		Expect(driver.State().State.ErrorIntegral).To(BeNumerically("~", 5.0, 1e-12))

		out := driver.Step(flight.Demands{Throttle: 0.01, Yaw: 0.5}, &flight.VehicleState{})
		Expect(driver.State().State.ErrorIntegral).To(BeNumerically("~", 0.5, 1e-12))
		Expect(out.Yaw).To(BeNumerically("~", pids.KP*0.5+pids.KI*0.5, 1e-12))
		Expect(out.Throttle).To(Equal(0.01))
	})

	It("keeps the integral when throttle sits at the cut threshold", func() {
		driver.Step(flight.Demands{Throttle: 0.5, Yaw: 0.5}, &flight.VehicleState{})
		driver.Step(flight.Demands{Throttle: 0.05, Yaw: 0.5}, &flight.VehicleState{})
		Expect(driver.State().State.ErrorIntegral).To(BeNumerically("~", 1.0, 1e-12))
	})

	It("clears state on Reset", func() {
		driver.Step(flight.Demands{Throttle: 0.5, Yaw: 0.3}, &flight.VehicleState{})
		driver.Reset()
		Expect(driver.State()).To(Equal(pids.New()))
	})
})
