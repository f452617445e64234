// Command varcop explains period-over-period ledger variance.
package main

import "github.com/theirongolddev/varcop/cmd"

func main() {
	cmd.Execute()
}
