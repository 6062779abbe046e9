// Command admincfg loads entity/view definitions and maps raw records
// through them offline.
package main

func main() {
	Execute()
}
