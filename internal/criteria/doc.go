// Package criteria implements the accessibility checks of a11yscan and the
// registry dispatching them by tag.
//
// Every check implements the Criteria interface and is run through Invoke,
// which handles the help request common to all of them. Leaf criteria
// inspect a Document snapshot and return a *model.Result; aggregate
// criteria run a fixed list of children and only report.
//
// Checks never write to the document. What they want to show to a person
// goes through the Reporter of the Env, and what they return is plain data,
// so a run can be tested without capturing any output.
//
// # Tags
//
// Tags follow the RGAA numbering: "10.5" is criteria 5 of theme 10, and
// "10.*" runs every implemented criteria of theme 10.
package criteria
