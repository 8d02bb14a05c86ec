package leadgate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpupo63/mindmesh-portfolio/errs"
	"github.com/rpupo63/mindmesh-portfolio/models"
)

type fakeLeads struct {
	created []models.Lead
	err     error
}

func (f *fakeLeads) CreateLead(_ context.Context, d models.LeadDraft) (models.Lead, error) {
	if f.err != nil {
		return models.Lead{}, f.err
	}
	lead := models.Lead{
		ID:          uuid.New(),
		Email:       d.Email,
		Phone:       d.Phone,
		ProjectID:   d.ProjectID,
		ProjectName: d.ProjectName,
		CapturedAt:  time.Now(),
	}
	f.created = append(f.created, lead)
	return lead, nil
}

type recordingOpener struct {
	urls []string
}

func (o *recordingOpener) OpenLink(_ context.Context, url string) {
	o.urls = append(o.urls, url)
}

type fakeNotifier struct {
	err   error
	calls int
}

func (n *fakeNotifier) NotifyLead(context.Context, models.Lead) error {
	n.calls++
	return n.err
}

func dashboard() models.Project {
	return models.Project{
		ID:         uuid.New(),
		Name:       "AI Agent Dashboard",
		ProjectURL: "https://example.com/ai-dashboard",
		IsActive:   true,
	}
}

func TestSubmitRejectsInvalidEmail(t *testing.T) {
	leads := &fakeLeads{}
	opener := &recordingOpener{}
	gate := New(leads, opener)
	gate.Open(dashboard())

	_, err := gate.Submit(context.Background(), "not-an-email", "+1 555-123-4567")
	require.Error(t, err)
	assert.True(t, errs.IsValidationError(err))
	assert.Equal(t, models.MsgInvalidEmail, errs.Fields(err)["email"])
	assert.False(t, errs.Fields(err).Has("phone"))

	assert.Empty(t, leads.created)
	assert.Empty(t, opener.urls)
	assert.Equal(t, AwaitingInput, gate.State())
	assert.Equal(t, models.MsgInvalidEmail, gate.FieldErrors()["email"])

	email, _ := gate.Captured()
	assert.Equal(t, "not-an-email", email)
}

func TestSubmitRejectsInvalidPhone(t *testing.T) {
	leads := &fakeLeads{}
	gate := New(leads, &recordingOpener{})
	gate.Open(dashboard())

	_, err := gate.Submit(context.Background(), "a@b.com", "12345")
	require.Error(t, err)
	assert.Equal(t, models.MsgInvalidPhone, errs.Fields(err)["phone"])
	assert.Empty(t, leads.created)
}

func TestSubmitAcceptsValidContact(t *testing.T) {
	leads := &fakeLeads{}
	opener := &recordingOpener{}
	notifier := &fakeNotifier{}
	project := dashboard()

	var transitions []State
	gate := New(leads, opener,
		WithNotifier(notifier),
		WithObserver(func(_, to State) { transitions = append(transitions, to) }),
	)
	gate.Open(project)

	lead, err := gate.Submit(context.Background(), " a@b.com ", "+1 555-123-4567")
	require.NoError(t, err)

	require.Len(t, leads.created, 1)
	assert.Equal(t, project.ID, lead.ProjectID)
	assert.Equal(t, project.Name, lead.ProjectName)
	assert.Equal(t, "a@b.com", lead.Email)
	assert.Equal(t, []string{project.ProjectURL}, opener.urls)
	assert.Equal(t, 1, notifier.calls)

	assert.Equal(t, Closed, gate.State())
	email, phone := gate.Captured()
	assert.Empty(t, email)
	assert.Empty(t, phone)
	assert.Equal(t, []State{AwaitingInput, Validating, Accepted, Closed}, transitions)
}

func TestSubmitCollaboratorFailure(t *testing.T) {
	leads := &fakeLeads{err: errors.New("connection refused")}
	opener := &recordingOpener{}
	gate := New(leads, opener)
	gate.Open(dashboard())

	_, err := gate.Submit(context.Background(), "a@b.com", "555-123-4567")
	require.Error(t, err)
	assert.True(t, errs.IsInternal(err))
	assert.Contains(t, err.Error(), MsgSubmitFailed)

	assert.Empty(t, opener.urls)
	assert.Equal(t, AwaitingInput, gate.State())
	assert.Equal(t, MsgSubmitFailed, gate.Failure())

	leads.err = nil
	_, err = gate.Submit(context.Background(), "a@b.com", "555-123-4567")
	require.NoError(t, err)
	assert.Len(t, leads.created, 1)
	assert.Len(t, opener.urls, 1)
}

func TestNotifierFailureDoesNotAffectOutcome(t *testing.T) {
	leads := &fakeLeads{}
	gate := New(leads, &recordingOpener{}, WithNotifier(&fakeNotifier{err: errors.New("twilio down")}))
	gate.Open(dashboard())

	_, err := gate.Submit(context.Background(), "a@b.com", "555-123-4567")
	require.NoError(t, err)
	assert.Len(t, leads.created, 1)
	assert.Equal(t, Closed, gate.State())
}

func TestGateIsReenterable(t *testing.T) {
	leads := &fakeLeads{}
	opener := &recordingOpener{}
	gate := New(leads, opener)

	first := dashboard()
	second := dashboard()
	second.ProjectURL = "https://example.com/shop"

	gate.Open(first)
	_, err := gate.Submit(context.Background(), "a@b.com", "555-123-4567")
	require.NoError(t, err)

	gate.Open(second)
	_, err = gate.Submit(context.Background(), "c@d.org", "555-987-6543")
	require.NoError(t, err)

	require.Len(t, leads.created, 2)
	assert.Equal(t, second.ID, leads.created[1].ProjectID)
	assert.Equal(t, []string{first.ProjectURL, second.ProjectURL}, opener.urls)
}

func TestSubmitRequiresOpenGate(t *testing.T) {
	gate := New(&fakeLeads{}, &recordingOpener{})
	_, err := gate.Submit(context.Background(), "a@b.com", "555-123-4567")
	assert.True(t, errs.IsBadRequest(err))

	gate.Open(dashboard())
	gate.Close()
	assert.Equal(t, Closed, gate.State())
	_, err = gate.Submit(context.Background(), "a@b.com", "555-123-4567")
	assert.True(t, errs.IsBadRequest(err))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "awaiting_input", AwaitingInput.String())
	assert.Equal(t, "unknown", State(42).String())
}
