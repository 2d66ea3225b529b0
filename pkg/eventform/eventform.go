package eventform

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/calendarapp/calendar/internal/utils"
	log "github.com/sirupsen/logrus"
)

var (
	ErrInvalidDates  = errors.New("end date must be after start date")
	ErrTitleRequired = errors.New("title is required")
)

// InvalidClass marks the title input after a submit with an empty title.
const InvalidClass = "is-invalid"

const defaultDuration = 2 * time.Hour

// InvalidDatesAlert is shown when the end of an event is not after its start.
var InvalidDatesAlert = Alert{Title: "Unvalid dates", Text: "Check dates", Icon: "error"}

type Values struct {
	Title string
	Notes string
	Start time.Time
	End   time.Time
}

// NewValues returns an empty event starting now and lasting two hours.
func NewValues(clock utils.Clock) Values {
	now := clock.Now()
	return Values{
		Start: now,
		End:   now.Add(defaultDuration),
	}
}

// DurationSeconds is the whole number of seconds from Start to End, truncated toward zero.
// ok is false when either bound is unset.
func (v Values) DurationSeconds() (seconds int64, ok bool) {
	if v.Start.IsZero() || v.End.IsZero() {
		return 0, false
	}
	return int64(v.End.Sub(v.Start) / time.Second), true
}

// Validate checks the date range first and the title second.
func Validate(v Values) error {
	if seconds, ok := v.DurationSeconds(); !ok || seconds <= 0 {
		return ErrInvalidDates
	}
	if len(v.Title) == 0 {
		return ErrTitleRequired
	}
	return nil
}

type Alert struct {
	Title string
	Text  string
	Icon  string
}

type Alerter interface {
	Alert(ctx context.Context, alert Alert)
}

type Saver interface {
	SaveEvent(ctx context.Context, values Values) error
}

// Modal is the part of the UI store the form closes after a successful save.
type Modal interface {
	CloseDateModal()
}

type Form struct {
	mu        sync.Mutex
	values    Values
	submitted bool
	alerter   Alerter
	saver     Saver
	modal     Modal
}

func New(values Values, alerter Alerter, saver Saver, modal Modal) *Form {
	return &Form{
		values:  values,
		alerter: alerter,
		saver:   saver,
		modal:   modal,
	}
}

func (f *Form) Values() Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

func (f *Form) SetTitle(title string) {
	f.update(func(v *Values) { v.Title = title })
}

func (f *Form) SetNotes(notes string) {
	f.update(func(v *Values) { v.Notes = notes })
}

func (f *Form) SetStart(start time.Time) {
	f.update(func(v *Values) { v.Start = start })
}

func (f *Form) SetEnd(end time.Time) {
	f.update(func(v *Values) { v.End = end })
}

func (f *Form) update(fn func(v *Values)) {
	f.mu.Lock()
	fn(&f.values)
	f.mu.Unlock()
}

func (f *Form) Submitted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitted
}

// TitleClass is empty until the first submit, then InvalidClass while the title stays empty.
func (f *Form) TitleClass() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.submitted || len(f.values.Title) > 0 {
		return ""
	}
	return InvalidClass
}

// Submit validates the form and saves it. An invalid range raises InvalidDatesAlert,
// an empty title is rejected without any alert. After a successful save the date
// modal is closed and the form goes back to its not-submitted state.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	f.submitted = true
	values := f.values
	f.mu.Unlock()

	err := Validate(values)
	switch {
	case errors.Is(err, ErrInvalidDates):
		log.Debugf("rejecting event %q: invalid dates %s - %s", values.Title, values.Start, values.End)
		if f.alerter != nil {
			f.alerter.Alert(ctx, InvalidDatesAlert)
		}
		return err
	case err != nil:
		return err
	}

	if f.saver != nil {
		if err := f.saver.SaveEvent(ctx, values); err != nil {
			return fmt.Errorf("failed to save event: %w", err)
		}
	}
	if f.modal != nil {
		f.modal.CloseDateModal()
	}

	f.mu.Lock()
	f.submitted = false
	f.mu.Unlock()
	return nil
}
