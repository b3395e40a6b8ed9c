// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Gcloud manages Google Cloud resources from the command line.

Usage:

	gcloud [global flags] <group> <command> [arguments]

The command groups are:

# builds

Submit, list, describe and cancel Cloud Build builds, and list and run build
triggers. Builds are regional when --region or the builds/region property is
set.

# artifacts

List, describe, create and delete Artifact Registry repositories, print their
IAM policies, and describe or wait for Artifact Registry operations. Listing
with --location=all queries every location concurrently.

# container

List and describe GKE clusters, and list, describe, wait for and cancel GKE
operations.

# config

Set, get, unset and list properties, and manage named configurations.

# meta

Parse resource references against the collection registry, list the
registered collections, list the files a source upload would include, and wait
for arbitrary google.longrunning operations.

# version

Print the version information.

Global flags:

	--project NAME        override core/project
	--configuration NAME  use a named configuration for this invocation
	--format FORMAT       json, yaml, text, none or value(FIELD,...)
	--verbosity LEVEL     debug, info, warning, error, critical or none
	-v, --verbose         shorthand for --verbosity=debug
	-q, --quiet           disable prompts and progress output

Errors are printed as "ERROR: (gcloud.GROUP.COMMAND) MESSAGE" and the process
exits with status 1.
*/
package main
