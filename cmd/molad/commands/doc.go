// Package commands defines the molad CLI.
//
// Commands
//
//   - convert       Gregorian date to Hebrew date
//   - gregorian     Hebrew date to Gregorian date
//   - molad         Molad of a Hebrew month
//   - rosh-chodesh  Rosh Chodesh days of the coming month
//   - facts         Full molad facts for a moment and location
//   - year          Month table of a Hebrew year
//
// Location and zmanim defaults come from the same environment variables as
// the API server and can be overridden with flags.
package commands
