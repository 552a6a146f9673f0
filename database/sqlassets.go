package sqlassets

import _ "embed"

//go:embed schema/proptrack.sql
var ProptrackSQL string
