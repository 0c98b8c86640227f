// Package classpath assembles the container-side classpath for a JVM
// application from host build output and resolved dependency artifacts.
//
// Assembly maps every entry through two volume mappings (the build
// directory first, the dependency cache second), keeps compiled classes
// before resources before dependencies, drops duplicate container paths,
// and reports entries that fall outside both mounts instead of silently
// producing a broken classpath.
package classpath
