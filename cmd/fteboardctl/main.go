// Command fteboardctl computes working-time and FTE reports offline.
package main

func main() {
	Execute()
}
