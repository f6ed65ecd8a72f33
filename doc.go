// Package ripple is a reactive rendering runtime.
//
// Application state lives in signals (package reactive). Elements built
// from them are mounted into a live document (package dom) and patched in
// place when the signals change: writes are batched by a scheduler and
// applied once per paint opportunity, ancestors before descendants.
//
// An App ties the pieces together:
//
//	app := ripple.New()
//	count := reactive.New(app.Scheduler(), 0)
//
//	var mountErr error
//	app.Do(ctx, func() {
//		env := app.Env()
//		root := env.Tag("button").
//			On("click", func(dom.Event) { count.Write().Map(func(n int) int { return n + 1 }) }).
//			Child(reactive.Text(env, count.Read(), strconv.Itoa)).
//			Build()
//		mountErr = app.Mount("app", root)
//	})
//
//	err := app.Run(ctx)
//
// Existing markup, such as server rendered HTML, is reused with Hydrate,
// which reports how closely the markup matched the generated tree.
//
// # Threading
//
// The document, the scheduler and every element are owned by the UI
// goroutine: the goroutine running the frame source. Other goroutines
// reach it with App.Do. Mount and Unmount must be called on the UI
// goroutine; Hydrate must not be, since it waits for the next paint
// opportunity.
package ripple
