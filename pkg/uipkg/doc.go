// SPDX-License-Identifier: MPL-2.0

// Package uipkg reads and writes the ".ppuipkg" UI package container.
//
// A container is a single XML document holding a basis path (the logical
// mount point the game places the contents under) and a flat list of named
// files. File contents are stored uncompressed as space-separated decimal
// byte values, which keeps the format diffable at the cost of size:
//
//	<PPUIPKGRoot file_count="1" icondata_count="0" game="Planet Coaster 2">
//	  <basic_path>Mod_ProTrack/Main</basic_path>
//	  <files>
//	    <ppuipkgfile file_size="2"><file_name>js/a.js</file_name><file_content>59 10</file_content></ppuipkgfile>
//	  </files>
//	  <types></types>
//	</PPUIPKGRoot>
//
// Names are unique within a container: adding a name that is already present
// replaces the existing item in place.
package uipkg
