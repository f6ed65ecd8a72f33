// Package errors provides structured errors for ripple.
//
// Every error carries a stable code (e.g. "E001") and a category. Contract
// violations inside the runtime panic with an *Error; boundary failures
// such as a missing mount anchor are returned as *Error values.
//
//	err := errors.New("E010").WithDetail(`no element with id "app"`)
//	fmt.Println(err.Format())
package errors
