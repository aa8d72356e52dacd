package toast

var global = NewTable(NewToaster())

// Global returns the process-wide emission table the package-level
// functions call through.
func Global() *Table { return global }

// Use binds the process-wide table to e. Layers pushed on the global table
// stay in place.
func Use(e Emitter) { global.Bind(e) }

// Success emits a success toast through the global table.
func Success(message any, opts ...Option) ID { return global.Success(message, opts...) }

// Error emits an error toast through the global table.
func Error(message any, opts ...Option) ID { return global.Error(message, opts...) }

// Info emits an info toast through the global table.
func Info(message any, opts ...Option) ID { return global.Info(message, opts...) }

// Warning emits a warning toast through the global table.
func Warning(message any, opts ...Option) ID { return global.Warning(message, opts...) }

// Emit emits a toast of the given kind through the global table.
func Emit(kind Kind, message any, opts ...Option) ID {
	return Call(global, kind, message, opts...)
}
