// Package permission answers who may do what on the forum and changes the permission tables.
//
// Permissions are stored per group, either forum-wide or per permission profile for board
// permissions. A missing row means the permission is not granted and an explicit deny row
// beats any allow row of another group. Inherited groups carry a copy of their parent's rows
// which is rewritten after every change to the parent.
package permission
