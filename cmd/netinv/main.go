// netinv - scheduled cross-account network inventory collection.
// Scan the registry, fan out, collect, persist.
package main

func main() {
	Execute()
}
