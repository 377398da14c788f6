package solve_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/episim/internal/dynamo"
	"github.com/san-kum/episim/internal/integrators"
	"github.com/san-kum/episim/internal/metrics"
	"github.com/san-kum/episim/internal/models"
	"github.com/san-kum/episim/internal/solve"
)

const campus = 7138.0

var (
	swineFlu = solve.SIRParams{N: campus, I0: 1, R0: 0, Beta: 1 / campus, K: 0.40, Horizon: 40}
	rumor    = solve.RumorParams{N: 275, I0: 1, R0: 8, B: 0.004, K: 0.002, Horizon: 15}
	cult     = solve.ExtendedParams{N: campus, I0: 10, R0: 0, Beta: 0.00014, Gamma: 0.4, Alpha: 0.05, Horizon: 40}
)

func runAll() map[string]*dynamo.Trajectory {
	classicTr, err := solve.SIR(swineFlu)
	Expect(err).NotTo(HaveOccurred())
	rumorTr, err := solve.Rumor(rumor)
	Expect(err).NotTo(HaveOccurred())
	extTr, err := solve.Extended(cult)
	Expect(err).NotTo(HaveOccurred())
	return map[string]*dynamo.Trajectory{"classic": classicTr, "rumor": rumorTr, "extended": extTr}
}

var _ = Describe("Simulation drivers", func() {
	Describe("trajectory shape", func() {
		It("returns horizon+1 aligned samples starting at day 0", func() {
			tr, err := solve.SIR(swineFlu)
			Expect(err).NotTo(HaveOccurred())

			s, i, r, t := solve.Columns(tr)
			for _, col := range [][]float64{s, i, r, t} {
				Expect(col).To(HaveLen(41))
			}
			Expect(t[0]).To(Equal(0.0))
			Expect(t[40]).To(Equal(40.0))
			Expect(s[0]).To(Equal(campus - 1))
			Expect(i[0]).To(Equal(1.0))
			Expect(r[0]).To(Equal(0.0))
		})

		It("subtracts both initial compartments from N", func() {
			tr, err := solve.Rumor(rumor)
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.States[0]).To(Equal(dynamo.State{266, 1, 8}))
		})

		It("falls back to the model's default horizon", func() {
			p := rumor
			p.Horizon = 0
			tr, err := solve.Rumor(p)
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.Len()).To(Equal(solve.DefaultRumorHorizon + 1))

			q := cult
			q.Horizon = 0
			tr, err = solve.Extended(q)
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.Len()).To(Equal(solve.DefaultHorizon + 1))
		})

		It("rejects a negative horizon", func() {
			p := swineFlu
			p.Horizon = -1
			_, err := solve.SIR(p)
			Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		})
	})

	Describe("conservation", func() {
		DescribeTable("S+I+R stays at its initial total",
			func(name string) {
				tr := runAll()[name]
				total := tr.States[0].Sum()
				for _, x := range tr.States {
					Expect(math.Abs(x.Sum()-total) / total).To(BeNumerically("<", 1e-6))
				}
			},
			Entry("classic", "classic"),
			Entry("extended", "extended"),
			Entry("rumor", "rumor"),
		)
	})

	Describe("monotonicity", func() {
		DescribeTable("susceptibles never increase",
			func(name string) {
				tr := runAll()[name]
				for k := 1; k < tr.Len(); k++ {
					Expect(tr.States[k][models.S]).To(BeNumerically("<=", tr.States[k-1][models.S]))
				}
			},
			Entry("classic", "classic"),
			Entry("rumor", "rumor"),
			Entry("extended", "extended"),
		)
	})

	Describe("zero transmission rate", func() {
		It("keeps S at S0 and I at I0 for the classic model without removal", func() {
			p := swineFlu
			p.Beta, p.K = 0, 0
			tr, err := solve.SIR(p)
			Expect(err).NotTo(HaveOccurred())
			for _, x := range tr.States {
				Expect(x[models.S]).To(Equal(campus - 1))
				Expect(x[models.I]).To(Equal(1.0))
			}
		})

		It("keeps S at S0 and never grows I when removal is active", func() {
			p := swineFlu
			p.Beta = 0
			tr, err := solve.SIR(p)
			Expect(err).NotTo(HaveOccurred())
			for k, x := range tr.States {
				Expect(x[models.S]).To(Equal(campus - 1))
				if k > 0 {
					Expect(x[models.I]).To(BeNumerically("<=", tr.States[k-1][models.I]))
				}
			}
		})

		It("keeps believers fixed for the rumor model without debunking", func() {
			p := rumor
			p.B, p.K = 0, 0
			tr, err := solve.Rumor(p)
			Expect(err).NotTo(HaveOccurred())
			for _, x := range tr.States {
				Expect(x).To(Equal(dynamo.State{266, 1, 8}))
			}
		})
	})

	Describe("zero initial infected", func() {
		It("never starts an outbreak in the classic model", func() {
			p := swineFlu
			p.I0 = 0
			tr, err := solve.SIR(p)
			Expect(err).NotTo(HaveOccurred())
			for _, x := range tr.States {
				Expect(x[models.S]).To(Equal(campus))
				Expect(x[models.I]).To(Equal(0.0))
			}
		})

		It("never starts a rumor", func() {
			p := rumor
			p.I0 = 0
			tr, err := solve.Rumor(p)
			Expect(err).NotTo(HaveOccurred())
			for _, x := range tr.States {
				Expect(x[models.S]).To(Equal(267.0))
				Expect(x[models.I]).To(Equal(0.0))
			}
		})

		It("only moves S to R through immunization in the extended model", func() {
			p := cult
			p.I0 = 0
			tr, err := solve.Extended(p)
			Expect(err).NotTo(HaveOccurred())
			for k, x := range tr.States {
				Expect(x[models.I]).To(Equal(0.0))
				Expect(x[models.S]).To(BeNumerically("~", campus*math.Pow(1-cult.Alpha, float64(k)), 1e-6))
			}
		})
	})

	Describe("peak identification", func() {
		It("matches the maximum I entry exactly", func() {
			tr, err := solve.Rumor(rumor)
			Expect(err).NotTo(HaveOccurred())

			day, value := metrics.Peak(tr)
			_, infected, _, times := solve.Columns(tr)

			best := 0
			for k := range infected {
				if infected[k] > infected[best] {
					best = k
				}
			}
			Expect(best).To(BeNumerically(">", 0))
			Expect(best).To(BeNumerically("<", len(infected)-1))
			Expect(day).To(Equal(times[best]))
			Expect(value).To(Equal(infected[best]))
		})
	})

	Describe("threshold scenario", func() {
		It("grows into an epidemic when R0 > 1", func() {
			tr, err := solve.SIR(swineFlu)
			Expect(err).NotTo(HaveOccurred())

			s := metrics.Summarize(swineFlu.Model(), campus, tr)
			Expect(s.R0).To(BeNumerically("~", 2.5, 1e-9))
			Expect(float64(s.TotalAffected)).To(BeNumerically(">", 0.5*campus))
			Expect(s.PeakDay).To(BeNumerically(">", 0))
			Expect(s.PeakDay).To(BeNumerically("<", 40))
		})

		It("stays contained when R0 < 1 and each day is refined", func() {
			p := swineFlu
			p.K = 5.0
			Expect(metrics.BasicReproduction(p.Beta, p.N, p.K)).To(BeNumerically("<", 1))

			tr, err := solve.Run(context.Background(), p.Model(), p.Initial(), solve.Options{
				Horizon:    p.Horizon,
				Integrator: integrators.NewRefined(10),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(float64(metrics.TotalAffected(p.N, tr))).To(BeNumerically("<", 0.05*campus))
		})

		It("stays contained when R0 < 1 and compartments are clamped", func() {
			p := swineFlu
			p.K = 5.0
			tr, err := solve.Run(context.Background(), p.Model(), p.Initial(), solve.Options{
				Horizon: p.Horizon,
				Clamp:   true,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(float64(metrics.TotalAffected(p.N, tr))).To(BeNumerically("<", 0.05*campus))
		})

		It("lets plain one-day Euler diverge silently when k*dt > 2", func() {
			p := swineFlu
			p.K = 5.0
			nonFinite := metrics.NewNonFinite()
			negative := metrics.NewNegativity()
			tr, err := solve.Run(context.Background(), p.Model(), p.Initial(), solve.Options{
				Horizon: p.Horizon,
				Metrics: []dynamo.Metric{nonFinite, negative},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.Len()).To(Equal(41))
			Expect(tr.Metrics["negative_states"]).To(BeNumerically(">", 0))
			Expect(tr.Metrics["non_finite_states"]).To(BeNumerically(">", 0))
		})

		It("reports the degeneracy as an error only when asked to", func() {
			p := swineFlu
			p.K = 5.0
			_, err := solve.Run(context.Background(), p.Model(), p.Initial(), solve.Options{
				Horizon:  p.Horizon,
				Validate: true,
			})
			Expect(err).To(MatchError(dynamo.ErrInvalidState))
		})
	})

	Describe("idempotence", func() {
		It("returns bit-identical trajectories for identical parameters", func() {
			first := runAll()
			second := runAll()
			for name, tr := range first {
				other := second[name]
				Expect(other.Len()).To(Equal(tr.Len()), name)
				for k := range tr.States {
					for c := range tr.States[k] {
						Expect(math.Float64bits(other.States[k][c])).To(Equal(math.Float64bits(tr.States[k][c])), name)
					}
				}
			}
		})
	})

	Describe("rumor comparison", func() {
		It("defaults to the current and doubled debunking rate", func() {
			scenarios, err := solve.RumorComparison(rumor)
			Expect(err).NotTo(HaveOccurred())
			Expect(scenarios).To(HaveLen(2))
			Expect(scenarios[0].Params.K).To(Equal(rumor.K))
			Expect(scenarios[1].Params.K).To(Equal(2 * rumor.K))
			Expect(scenarios[0].Label).To(ContainSubstring("x1"))
			Expect(scenarios[1].Label).To(ContainSubstring("x2"))
		})

		It("spreads the rumor less when rationals persuade faster", func() {
			scenarios, err := solve.RumorComparison(rumor, 1, 4)
			Expect(err).NotTo(HaveOccurred())

			_, slow := metrics.Peak(scenarios[0].Trajectory)
			_, fast := metrics.Peak(scenarios[1].Trajectory)
			Expect(fast).To(BeNumerically("<", slow))
		})

		It("matches a standalone run for every scenario", func() {
			scenarios, err := solve.RumorComparison(rumor, 1, 2, 3)
			Expect(err).NotTo(HaveOccurred())
			for _, sc := range scenarios {
				tr, err := solve.Rumor(sc.Params)
				Expect(err).NotTo(HaveOccurred())
				Expect(sc.Trajectory.States).To(Equal(tr.States))
			}
		})
	})
})
