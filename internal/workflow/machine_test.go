package workflow_test

import (
	"testing"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/validate-sheets/internal/workflow"
	"github.com/joe/validate-sheets/pkg/errors"
)

func testFile() workflow.SourceFile {
	return workflow.SourceFile{Name: "adressen.xlsx", SizeBytes: 2 * 1024 * 1024, Path: "/tmp/adressen.xlsx"}
}

func TestMachine_HappyPath(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	machine := workflow.NewMachine()
	g.Expect(machine.State()).To(Equal(workflow.StateIdle))
	g.Expect(machine.Session()).To(BeNil())

	g.Expect(machine.BeginUpload(testFile())).To(Succeed())
	g.Expect(machine.State()).To(Equal(workflow.StateUploading))
	g.Expect(machine.Session()).To(BeNil())

	g.Expect(machine.UploadSucceeded("abc")).To(Succeed())
	g.Expect(machine.State()).To(Equal(workflow.StateProcessing))
	g.Expect(machine.Session().ID).To(Equal("abc"))
	g.Expect(machine.Session().File.Name).To(Equal("adressen.xlsx"))

	g.Expect(machine.Completed()).To(Succeed())
	g.Expect(machine.State()).To(Equal(workflow.StateComplete))
	g.Expect(machine.Session()).NotTo(BeNil())
	g.Expect(machine.LastError()).To(BeNil())
}

func TestMachine_InvalidEventsRejectedWithoutMutation(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	machine := workflow.NewMachine()

	g.Expect(machine.Completed()).To(MatchError(workflow.ErrInvalidTransition))
	g.Expect(machine.UploadSucceeded("abc")).To(MatchError(workflow.ErrInvalidTransition))
	g.Expect(machine.Reset()).To(MatchError(workflow.ErrInvalidTransition))
	g.Expect(machine.Retry()).To(MatchError(workflow.ErrInvalidTransition))

	g.Expect(machine.State()).To(Equal(workflow.StateIdle))
	g.Expect(machine.Session()).To(BeNil())
	g.Expect(machine.LastError()).To(BeNil())
}

func TestMachine_FailureClearsSessionAndKeepsFile(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	machine := workflow.NewMachine()
	g.Expect(machine.BeginUpload(testFile())).To(Succeed())
	g.Expect(machine.UploadSucceeded("abc")).To(Succeed())

	appErr := errors.New(errors.KindNetwork, "Verbindingsfout")
	g.Expect(machine.Failed(appErr)).To(Succeed())

	// Session is non-nil iff Processing or Complete; Error clears it
	// while the file stays for retry.
	g.Expect(machine.State()).To(Equal(workflow.StateError))
	g.Expect(machine.Session()).To(BeNil())
	g.Expect(machine.File()).NotTo(BeNil())
	g.Expect(machine.LastError()).To(BeIdenticalTo(appErr))
	g.Expect(machine.CanRetry()).To(BeTrue())
}

func TestMachine_RetryOnlyWhenRecoverable(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	machine := workflow.NewMachine()
	g.Expect(machine.BeginUpload(testFile())).To(Succeed())
	g.Expect(machine.Failed(errors.New(errors.KindValidation, "Ongeldig bestand"))).To(Succeed())

	g.Expect(machine.CanRetry()).To(BeFalse())
	g.Expect(machine.Retry()).To(MatchError(workflow.ErrNotRetryable))
	g.Expect(machine.State()).To(Equal(workflow.StateError))
}

func TestMachine_RetryReturnsToUploading(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	machine := workflow.NewMachine()
	g.Expect(machine.BeginUpload(testFile())).To(Succeed())
	g.Expect(machine.Failed(errors.New(errors.KindNetwork, "Verbindingsfout"))).To(Succeed())

	g.Expect(machine.Retry()).To(Succeed())
	g.Expect(machine.State()).To(Equal(workflow.StateUploading))
	g.Expect(machine.LastError()).To(BeNil())
	g.Expect(machine.File().Name).To(Equal("adressen.xlsx"))
}

func TestMachine_ResetClearsEverything(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	machine := workflow.NewMachine()
	g.Expect(machine.BeginUpload(testFile())).To(Succeed())
	g.Expect(machine.UploadSucceeded("abc")).To(Succeed())
	g.Expect(machine.Completed()).To(Succeed())

	g.Expect(machine.Reset()).To(Succeed())
	g.Expect(machine.State()).To(Equal(workflow.StateIdle))
	g.Expect(machine.Session()).To(BeNil())
	g.Expect(machine.File()).To(BeNil())
	g.Expect(machine.LastError()).To(BeNil())
}

func TestMachine_TransitionCallback(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	machine := workflow.NewMachine()

	var transitions []workflow.State

	machine.OnTransition(func(_, to workflow.State) {
		transitions = append(transitions, to)
	})

	g.Expect(machine.BeginUpload(testFile())).To(Succeed())
	g.Expect(machine.UploadSucceeded("abc")).To(Succeed())
	g.Expect(machine.Completed()).To(Succeed())
	g.Expect(machine.Reset()).To(Succeed())

	g.Expect(transitions).To(Equal([]workflow.State{
		workflow.StateUploading,
		workflow.StateProcessing,
		workflow.StateComplete,
		workflow.StateIdle,
	}))
}
