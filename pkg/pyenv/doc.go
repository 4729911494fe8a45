// Package pyenv inspects the Python environment a project runs in.
//
// [Find] locates an interpreter and [Query] asks it, in a single subprocess,
// for its version, sysconfig install paths, site-packages directories and
// stdlib/builtin module names. The resulting [Interpreter] implements
// [stdlib.OriginLocator] through importlib.util.find_spec and can build a
// ready-to-use [stdlib.Classifier].
//
// [LoadRegistry] reads installed distribution metadata straight from
// site-packages directories, producing the installed [Registry] (name to
// version) and the import-name to distribution [Mapping] used by the
// resolver. Neither step imports any project code.
package pyenv
