package toast

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

// recordingEmitter remembers every call and returns a fixed ID per kind.
type recordingEmitter struct {
	calls []call
}

type call struct {
	kind    Kind
	message any
	opts    Options
}

func (r *recordingEmitter) emit(kind Kind, message any, opts []Option) ID {
	r.calls = append(r.calls, call{kind: kind, message: message, opts: Apply(opts...)})
	return ID("id-" + string(kind))
}

func (r *recordingEmitter) Success(m any, opts ...Option) ID { return r.emit(KindSuccess, m, opts) }
func (r *recordingEmitter) Error(m any, opts ...Option) ID   { return r.emit(KindError, m, opts) }
func (r *recordingEmitter) Info(m any, opts ...Option) ID    { return r.emit(KindInfo, m, opts) }
func (r *recordingEmitter) Warning(m any, opts ...Option) ID { return r.emit(KindWarning, m, opts) }

func funcPointer(fn Func) uintptr {
	return reflect.ValueOf(fn).Pointer()
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{in: "success", want: KindSuccess},
		{in: "ERROR", want: KindError},
		{in: " info ", want: KindInfo},
		{in: "warning", want: KindWarning},
		{in: "warn", want: KindWarning},
		{in: "fatal", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestToasterShowAndExpire(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	toaster := NewToaster(WithClock(func() time.Time { return now }), WithDefaultDuration(time.Second))

	id := toaster.Error("disk full", WithDescription("/var"))
	if id == "" {
		t.Fatal("expected a generated ID")
	}
	toaster.Success("saved", WithDuration(5*time.Second))

	active := toaster.Active()
	if len(active) != 2 {
		t.Fatalf("expected 2 toasts, got %d", len(active))
	}
	if active[0].Kind != KindError || active[0].Text != "disk full" || active[0].Description != "/var" {
		t.Errorf("unexpected first toast: %+v", active[0])
	}

	removed := toaster.Expire(now.Add(2 * time.Second))
	if removed != 1 {
		t.Errorf("expected 1 expired toast, got %d", removed)
	}
	active = toaster.Active()
	if len(active) != 1 || active[0].Text != "saved" {
		t.Errorf("expected only 'saved' to remain, got %+v", active)
	}
}

func TestToasterReplacesSameID(t *testing.T) {
	toaster := NewToaster()

	toaster.Info("uploading", WithID("upload"))
	got := toaster.Success("uploaded", WithID("upload"))

	if got != "upload" {
		t.Errorf("expected caller ID to be returned, got %s", got)
	}
	active := toaster.Active()
	if len(active) != 1 {
		t.Fatalf("expected 1 toast, got %d", len(active))
	}
	if active[0].Kind != KindSuccess || active[0].Text != "uploaded" {
		t.Errorf("expected replaced toast, got %+v", active[0])
	}
}

func TestToasterRendersAnyPayload(t *testing.T) {
	toaster := NewToaster()

	toaster.Error(errors.New("boom"))
	toaster.Info(map[string]int{"retries": 3})
	toaster.Warning(nil)

	active := toaster.Active()
	if active[0].Text != "boom" {
		t.Errorf("expected error text, got %q", active[0].Text)
	}
	if active[1].Text != "map[retries:3]" {
		t.Errorf("expected formatted map, got %q", active[1].Text)
	}
	if active[2].Text != "" {
		t.Errorf("expected empty text for nil, got %q", active[2].Text)
	}
}

func TestToasterDismiss(t *testing.T) {
	toaster := NewToaster()
	id := toaster.Info("hello")

	if !toaster.Dismiss(id) {
		t.Error("expected dismiss to succeed")
	}
	if toaster.Dismiss(id) {
		t.Error("expected second dismiss to fail")
	}
	if len(toaster.Active()) != 0 {
		t.Error("expected no toasts")
	}
}

func TestToasterViewCapsVisible(t *testing.T) {
	toaster := NewToaster(WithMaxVisible(2))
	if toaster.View(80) != "" {
		t.Error("expected empty view with no toasts")
	}

	toaster.Info("first")
	toaster.Info("second")
	toaster.Info("third")

	view := toaster.View(80)
	if strings.Contains(view, "first") {
		t.Errorf("expected oldest toast to be hidden, got %q", view)
	}
	if !strings.Contains(view, "second") || !strings.Contains(view, "third") {
		t.Errorf("expected newest toasts in view, got %q", view)
	}
}

func TestTableCallsThroughToEmitter(t *testing.T) {
	rec := &recordingEmitter{}
	table := NewTable(rec)

	for _, k := range Kinds {
		got := Call(table, k, "hi", WithDescription("d"))
		if got != ID("id-"+string(k)) {
			t.Errorf("%s: expected passthrough ID, got %s", k, got)
		}
	}
	if len(rec.calls) != 4 {
		t.Fatalf("expected 4 calls, got %d", len(rec.calls))
	}
	if rec.calls[1].kind != KindError || rec.calls[1].opts.Description != "d" {
		t.Errorf("unexpected call: %+v", rec.calls[1])
	}
}

func TestTablePushPopRestoresBase(t *testing.T) {
	rec := &recordingEmitter{}
	table := NewTable(rec)
	before := table.Snapshot()

	var seen []Kind
	pop := table.Push(func(kind Kind, next Func) Func {
		return func(message any, opts ...Option) ID {
			seen = append(seen, kind)
			return next(message, opts...)
		}
	})

	if table.Depth() != 1 {
		t.Errorf("expected depth 1, got %d", table.Depth())
	}
	if got := table.Warning("careful"); got != "id-warning" {
		t.Errorf("expected passthrough ID, got %s", got)
	}
	if len(seen) != 1 || seen[0] != KindWarning {
		t.Errorf("expected middleware to see warning, got %v", seen)
	}

	pop()
	pop() // idempotent

	after := table.Snapshot()
	for _, k := range Kinds {
		if funcPointer(before[k]) != funcPointer(after[k]) {
			t.Errorf("%s: slot not restored", k)
		}
	}
	table.Warning("again")
	if len(seen) != 1 {
		t.Errorf("expected middleware to be gone, saw %v", seen)
	}
}

func TestTablePopOutOfOrder(t *testing.T) {
	rec := &recordingEmitter{}
	table := NewTable(rec)

	var order []string
	tag := func(name string) Middleware {
		return func(kind Kind, next Func) Func {
			return func(message any, opts ...Option) ID {
				order = append(order, name)
				return next(message, opts...)
			}
		}
	}

	popA := table.Push(tag("a"))
	popB := table.Push(tag("b"))

	table.Info("x")
	if strings.Join(order, ",") != "b,a" {
		t.Errorf("expected outermost layer first, got %v", order)
	}

	// Releasing the lower layer first must leave only b in place.
	popA()
	order = nil
	table.Info("y")
	if strings.Join(order, ",") != "b" {
		t.Errorf("expected only b, got %v", order)
	}

	popB()
	order = nil
	table.Info("z")
	if len(order) != 0 {
		t.Errorf("expected no layers, got %v", order)
	}
	if len(rec.calls) != 3 {
		t.Errorf("expected 3 underlying calls, got %d", len(rec.calls))
	}
}

func TestTableSetKeepsLayers(t *testing.T) {
	table := NewTable(&recordingEmitter{})

	wrapped := 0
	pop := table.Push(func(kind Kind, next Func) Func {
		return func(message any, opts ...Option) ID {
			wrapped++
			return next(message, opts...)
		}
	})
	defer pop()

	table.Set(KindError, func(any, ...Option) ID { return "custom" })
	if got := table.Error("x"); got != "custom" {
		t.Errorf("expected new base to be called, got %s", got)
	}
	if wrapped != 1 {
		t.Errorf("expected layer to still wrap, got %d", wrapped)
	}
}

func TestNilEmitterTable(t *testing.T) {
	table := NewTable(nil)
	if got := table.Success("x"); got != "" {
		t.Errorf("expected empty ID, got %s", got)
	}
}

func TestGlobalFunctionsUseBoundEmitter(t *testing.T) {
	rec := &recordingEmitter{}
	Use(rec)
	defer Use(NewToaster())

	if got := Error("Network down"); got != "id-error" {
		t.Errorf("expected id-error, got %s", got)
	}
	if got := Emit(KindInfo, 42); got != "id-info" {
		t.Errorf("expected id-info, got %s", got)
	}
	if len(rec.calls) != 2 || rec.calls[1].message != 42 {
		t.Errorf("unexpected calls: %+v", rec.calls)
	}
}
