package flash

import "github.com/moffa90/go-norflash/qspi"

// Logger is the logging interface shared by this module. See
// qspi.Logger for the contract.
type Logger = qspi.Logger
