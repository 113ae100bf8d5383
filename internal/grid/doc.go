// Package grid coordinates the state of one tabular data browser.
//
// A Grid owns a pagination, sort, search, selection and column controller and
// a data source adapter running in either local or remote mode. Every user
// action is a synchronous state transition; fetches are handed to the
// caller's Dispatch function as Requests and their results come back through
// Resolve. Only the response to the most recent request whose query still
// matches the grid's state is applied. Anything else is discarded.
//
// Listeners registered with Subscribe are called once per settled
// transition, after the grid's lock is released.
package grid
