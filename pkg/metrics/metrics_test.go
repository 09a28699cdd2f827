package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("NewManager should register all collectors without panicking", func() {
			var manager *Manager
			So(func() {
				manager = NewManager(
					WithNamespace("testns"),
					WithSubsystem("testsub"),
					WithHistogramBuckets([]float64{1, 10, 100}),
					WithRegistry(registry),
				)
			}, ShouldNotPanic)
			So(manager, ShouldNotBeNil)
		})
	})
}

func TestPackageLevelRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Recorders should not panic", func() {
			So(func() {
				RecordRunStarted()
				RecordRunCompleted("full")
				RecordRunCompleted("no_shots")
				RecordRunFailed()
				RecordRunDuplicate()
				RecordStageLatency("segment", 12.5)
				RecordFramesSampled(120)
				RecordAttemptSegmented()
				RecordAttemptDiscarded()
				RecordGlobalScore(78.5)
				RecordCollaboratorRetry("pose")
				RecordCollaboratorError("judgment")
				UpdateQueueSize(3)
				UpdateQueueCapacity(100)
				UpdateQueueUtilization(0.03)
				RecordQueueEnqueue()
				RecordQueueReject()
				UpdateWorkerCount(4)
				UpdateResultsStored(7)
			}, ShouldNotPanic)
		})

		Convey("GetRegistry should return the custom registry", func() {
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
