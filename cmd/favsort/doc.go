// Command favsort sorts Bilibili favorites folders with a language model.
//
// It logs in via a terminal QR code, lists favorites folders, and runs a
// classify pipeline that fetches a folder's items, asks the model to pick a
// target category for each, and moves the items into the matching folders.
package main
