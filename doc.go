/*
Package vaila provisions the vailá multimodal human-movement-analysis
toolbox on a workstation: it locates the conda dependency manager, creates
or updates the toolbox's environment from a declarative manifest, installs
GPU extras when NVIDIA hardware is present, copies the application tree
into place, and registers a launcher script and a desktop entry.

The installation runs as a staged engine in its own goroutine. Progress is
reported over a status channel, the run can be aborted, and an aborted or
failed run can be rolled back, deleting exactly the paths the run created,
in reverse order. A receipt of everything written is stored in the target
directory so that `vaila uninstall` and `vaila doctor` can act on it later.

Subpackages carry the toolbox's data tooling: DLT reconstruction (rec2d),
orientation math (rotation), stabilogram metrics (stabilo), video metadata
and coordinate reversion (video), pose landmark files (pose) and batch
file management (files).
*/
package vaila
