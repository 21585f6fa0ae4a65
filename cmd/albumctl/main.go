// Command albumctl runs the reference data import and photo reconciliation
// pipeline from the command line against the configured database.
package main

func main() {
	Execute()
}
