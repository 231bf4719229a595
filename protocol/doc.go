/*
Package protocol provides structures which represent operations and returns from the
compliance verification engine.

Basics

The Rule structure represents a single auditable requirement, and the Checklist
structure represents a named audit built from a snapshot of active rules. These are
the structures typically returned from operations on the engine.

Objects to initiate changes are suffixed with *Request. POSTing correctly formatted
objects to the correct route in a running instance will cause the built action to be
performed; e.g. CreateRuleRequest or UpdateCheckRequest.

*/
package protocol
