/*
Package util provides general-purpose helpers for common operations in
the compliance-server package.

Operations include helpers to deal with GUIDs, request decoding, route
captures, and time.
*/
package util
