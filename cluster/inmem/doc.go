/*
Package inmem implements the cluster Connector interface on top of in-memory
maps of index names. This implementation is meant to help run curator
quickly without a need to set up a dedicated search cluster. Since data is
lost when the process exits, it is recommended for test environments only.
*/
package inmem
