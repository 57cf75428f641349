package dto

import "encoding/xml"

// System is the root of the embedded manifest document:
//
//	<sistema>
//	  <tabelas>
//	    <pacotes>
//	      <pacote cod="P1" desc="...">
//	        <tabelas>
//	          <tabela id="1" versao="2" tipo="T" desc="..."/>
//	        </tabelas>
//	      </pacote>
//	    </pacotes>
//	  </tabelas>
//	</sistema>
type System struct {
	XMLName xml.Name
	Code    string        `xml:"cod,attr"`
	Tables  *SystemTables `xml:"tabelas"`
}

// SystemTables wraps the packages collection.
type SystemTables struct {
	Packages *Packages `xml:"pacotes"`
}

// Packages holds every <pacote> child in document order.
type Packages struct {
	Items []Package `xml:"pacote"`
}

// Package is one <pacote> element. Tables is nil when the package has no
// <tabelas> child.
type Package struct {
	Code        string         `xml:"cod,attr"`
	Description string         `xml:"desc,attr"`
	Tables      *PackageTables `xml:"tabelas"`
}

// PackageTables collects the <tabela> children. A single child and several
// children both decode into Items, in document order.
type PackageTables struct {
	Items []Table `xml:"tabela"`
}

// Table is one <tabela> element.
type Table struct {
	ID          string `xml:"id,attr"`
	Version     string `xml:"versao,attr"`
	Type        string `xml:"tipo,attr"`
	Description string `xml:"desc,attr"`
}
