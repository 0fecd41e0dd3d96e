// Package deps checks that the external executables qslgen shells out to are
// installed.
package deps
