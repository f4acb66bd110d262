/*
Package respond provides the responders the machine dispatches state entries to.

A Composite fans every call out to its members in order and stops at the first
failure. A Publisher forwards entered states to an EventServer and never keeps
the machine busy.
*/
package respond
