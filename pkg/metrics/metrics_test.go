package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created with defaults", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "top2000")
				So(manager.subsystem, ShouldEqual, "chart")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.queryErrors.WithLabelValues("songs", "internal").Inc()

			Convey("Then metric names and constant labels follow the options", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var found bool
				for _, f := range families {
					if f.GetName() == "test_namespace_test_subsystem_query_errors_total" {
						found = true
						labels := f.GetMetric()[0].GetLabel()
						var names []string
						for _, l := range labels {
							names = append(names, l.GetName())
						}
						So(strings.Join(names, ","), ShouldContainSubstring, "env")
					}
				}
				So(found, ShouldBeTrue)
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
			})
		})

		Convey("When empty options are given", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "top2000")
				So(manager.subsystem, ShouldEqual, "chart")
				So(len(manager.histogramBuckets), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording query metrics", func() {
			before := testutil.ToFloat64(globalManager.queryErrors.WithLabelValues("new_entries", "invalid_argument"))
			RecordQuery("new_entries", 3.5, 12)
			RecordQueryError("new_entries", "invalid_argument")

			Convey("Then the error counter increments", func() {
				after := testutil.ToFloat64(globalManager.queryErrors.WithLabelValues("new_entries", "invalid_argument"))
				So(after-before, ShouldEqual, 1)
			})
		})

		Convey("When recording store metrics", func() {
			before := testutil.ToFloat64(globalManager.storeErrors.WithLabelValues("rows"))
			RecordStoreQueryLatency("rows", 1.2)
			RecordStoreError("rows")
			UpdateBreakerState("store", 2)
			RecordBreakerRejected("store")

			Convey("Then the gauges and counters reflect the calls", func() {
				So(testutil.ToFloat64(globalManager.storeErrors.WithLabelValues("rows"))-before, ShouldEqual, 1)
				So(testutil.ToFloat64(globalManager.breakerState.WithLabelValues("store")), ShouldEqual, 2)
			})
		})

		Convey("When recording chart shape", func() {
			UpdateEditionSize("2024", 2000)
			UpdateEditionsTotal(25)

			Convey("Then the gauges hold the latest values", func() {
				So(testutil.ToFloat64(globalManager.editionSize.WithLabelValues("2024")), ShouldEqual, 2000)
				So(testutil.ToFloat64(globalManager.editionsTotal), ShouldEqual, 25)
			})
		})

		Convey("When recording HTTP, error and system metrics", func() {
			Convey("Then nothing panics", func() {
				So(func() {
					RecordHTTPRequest("songs", "GET", "200")
					RecordHTTPRequestDuration("songs", "GET", "200", 4)
					RecordErrorByComponent("http", "not_found")
					RecordErrorByEndpoint("songs", "GET", "not_found")
					UpdateSystemMemoryUsage(1 << 20)
					UpdateSystemGoroutineCount(12)
					RecordSystemGCPauseTime(0.3)
				}, ShouldNotPanic)
			})
		})

		Convey("When gathering the custom registry", func() {
			RecordHTTPRequest("healthz", "GET", "200")
			families, err := GetRegistry().Gather()

			Convey("Then our metrics are exposed", func() {
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}
