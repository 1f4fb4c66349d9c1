// This file is part of Clockwork.
//
// Clockwork is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Clockwork is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Clockwork.  If not, see <https://www.gnu.org/licenses/>.

// Package curated provides the error type used throughout the project. A
// curated error keeps hold of its formatting pattern, meaning that errors can
// be compared by pattern with the Is() and Has() functions, even deep into an
// error chain.
//
// Note the distinction between errors as used by the emulation cores and Go
// errors returned by this package: a fault that the emulated machine itself
// would experience (an illegal opcode, a bus error) is not a Go error. Those
// are routed through the architected exception mechanism of the CPU being
// emulated. Go errors are reserved for misuse of an API and for internal
// invariant failures.
package curated
